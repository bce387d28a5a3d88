package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	_ "golang.org/x/image/bmp"

	"github.com/vango-dev/tabdeck/pkg/reactive"
)

var (
	// ErrUnsupportedType is returned by Load for unknown file extensions.
	ErrUnsupportedType = errors.New("documents: unsupported file type")

	// ErrFileExists is returned by Creator when the target already exists.
	ErrFileExists = errors.New("documents: file already exists")

	// ErrInvalidName is returned by Creator for an empty or nested name.
	ErrInvalidName = errors.New("documents: invalid file name")
)

// Opener reads the bytes of a document.
type Opener interface {
	Open(ctx context.Context, path string) ([]byte, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) ([]byte, error)

// Open calls f(ctx, path).
func (f OpenerFunc) Open(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// FileOpener reads documents from the local filesystem.
type FileOpener struct{}

// Open reads the file at path.
func (FileOpener) Open(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// MultiOpener routes a path to an opener by its URL scheme. Paths without
// a scheme go to Local.
type MultiOpener struct {
	Local   Opener
	Schemes map[string]Opener
}

// Open dispatches on the scheme of path.
func (m MultiOpener) Open(ctx context.Context, path string) ([]byte, error) {
	if scheme, _, ok := strings.Cut(path, "://"); ok {
		o, found := m.Schemes[scheme]
		if !found {
			return nil, fmt.Errorf("open %s: no opener for scheme %q", path, scheme)
		}
		return o.Open(ctx, path)
	}
	if m.Local == nil {
		return FileOpener{}.Open(ctx, path)
	}
	return m.Local.Open(ctx, path)
}

// Load reads path through opener and builds the document matching its
// extension.
//
//	.txt                  text document
//	.bmp .png .jpg .jpeg  image document with decoded dimensions
//	.svg                  image document, not decoded
func Load(ctx context.Context, rt *reactive.Runtime, opener Opener, path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".bmp", ".png", ".jpg", ".jpeg", ".svg":
	default:
		return nil, fmt.Errorf("load %s: %w %q", path, ErrUnsupportedType, ext)
	}

	data, err := opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	switch ext {
	case ".txt":
		return NewTextDocument(rt, path, data), nil
	case ".svg":
		return NewImageDocument(rt, path, "svg", 0, 0), nil
	default:
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("load %s: decode: %w", path, err)
		}
		return NewImageDocument(rt, path, format, cfg.Width, cfg.Height), nil
	}
}

// FileName returns the last element of a local path or URL, used as the
// title of the tab showing it.
func FileName(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(filepath.ToSlash(p))
}

// Digest returns the BLAKE3 digest of data.
func Digest(data []byte) [32]byte {
	return blake3.Sum256(data)
}
