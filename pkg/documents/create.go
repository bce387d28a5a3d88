package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// NewTextContent is the content of a freshly created text file.
const NewTextContent = "New file content"

// NewBitmapSize is the edge length of a freshly created bitmap.
const NewBitmapSize = 256

// Creator creates the file requested by a NewDocumentForm and returns its
// path.
type Creator interface {
	Create(ctx context.Context, req Request) (string, error)
}

// FileCreator creates files on the local filesystem.
type FileCreator struct{}

// Create writes <dir>/<name>.txt or <dir>/<name>.bmp. An extension
// already on name is replaced. It fails with ErrFileExists rather than
// overwrite anything.
func (FileCreator) Create(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}

	var (
		ext  string
		data []byte
	)
	switch req.Kind {
	case NewText:
		ext, data = ".txt", []byte(NewTextContent)
	case NewBitmap:
		var err error
		ext = ".bmp"
		if data, err = gradientBitmap(); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("create: unknown file type %s", req.Kind)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}
	path := filepath.Join(req.Directory, stem+ext)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create %s: %w", path, ErrFileExists)
		}
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// gradientBitmap encodes the default bitmap: red grows along x, blue
// along y.
func gradientBitmap() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, NewBitmapSize, NewBitmapSize))
	for y := 0; y < NewBitmapSize; y++ {
		for x := 0; x < NewBitmapSize; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(0.3 * float64(x)),
				B: uint8(0.3 * float64(y)),
				A: 0xff,
			})
		}
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode bitmap: %w", err)
	}
	return buf.Bytes(), nil
}
