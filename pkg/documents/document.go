// Package documents holds the document entities of the workbench and the
// registry that owns them.
//
// A Document is one of *TextDocument, *ImageDocument or *NewDocumentForm.
// Callers switch on the concrete type:
//
//	switch d := doc.(type) {
//	case *documents.TextDocument:
//	    fmt.Println(d.Content.Get())
//	case *documents.ImageDocument:
//	    fmt.Println(d.Width, d.Height)
//	case *documents.NewDocumentForm:
//	    fmt.Println(d.Name.Get())
//	}
//
// Fields that change while a document is open are signals of their own, so
// editing them never counts as a change of the registry.
package documents

import (
	"fmt"

	"github.com/vango-dev/tabdeck/pkg/reactive"
)

// Key identifies a document in a Registry. The zero Key is never issued.
type Key uint64

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("doc#%d", uint64(k))
}

// Kind is the kind of a document.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindImage
	KindNewForm
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindNewForm:
		return "new"
	default:
		return "unknown"
	}
}

// Document is a document entity. The set of implementations is closed.
type Document interface {
	Kind() Kind
	document()
}

// TextDocument is an open text file.
type TextDocument struct {
	Path    string
	Content *reactive.Signal[string]

	// Digest is the BLAKE3 digest of the content last read from Path.
	Digest [32]byte
}

// NewTextDocument creates a text document holding content.
func NewTextDocument(rt *reactive.Runtime, path string, content []byte) *TextDocument {
	return &TextDocument{
		Path:    path,
		Content: reactive.NewSignal(rt, string(content), reactive.Named("content:"+FileName(path))),
		Digest:  Digest(content),
	}
}

func (*TextDocument) Kind() Kind { return KindText }
func (*TextDocument) document()  {}

// Coordinate is a pixel position inside an image. Valid is false until a
// position has been picked.
type Coordinate struct {
	X, Y  int
	Valid bool
}

func (c Coordinate) String() string {
	if !c.Valid {
		return "None"
	}
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// ImageDocument is an open image file. Width and Height are zero for
// formats that are not decoded, such as SVG.
type ImageDocument struct {
	Path   string
	Format string
	Width  int
	Height int

	Coordinate *reactive.Signal[Coordinate]
}

// NewImageDocument creates an image document.
func NewImageDocument(rt *reactive.Runtime, path, format string, width, height int) *ImageDocument {
	return &ImageDocument{
		Path:       path,
		Format:     format,
		Width:      width,
		Height:     height,
		Coordinate: reactive.NewSignal(rt, Coordinate{}, reactive.Named("coordinate:"+FileName(path))),
	}
}

func (*ImageDocument) Kind() Kind { return KindImage }
func (*ImageDocument) document()  {}

// NewKind is the kind of file a NewDocumentForm creates.
type NewKind uint8

const (
	NewText NewKind = iota
	NewBitmap
)

// NewKinds lists every NewKind in display order.
var NewKinds = []NewKind{NewText, NewBitmap}

func (k NewKind) String() string {
	switch k {
	case NewText:
		return "Text"
	case NewBitmap:
		return "Bitmap"
	default:
		return fmt.Sprintf("NewKind(%d)", uint8(k))
	}
}

// ParseNewKind parses the String form of a NewKind.
func ParseNewKind(s string) (NewKind, error) {
	for _, k := range NewKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("documents: unknown file type %q", s)
}

// NewDocumentForm is a document that has not been created yet. It sits in
// the registry under its final key until Submitted fires and the created
// file replaces it.
type NewDocumentForm struct {
	Type      *reactive.Signal[NewKind]
	Name      *reactive.Signal[string]
	Directory *reactive.Signal[string]

	// Title is shared with the tab showing the form.
	Title *reactive.Signal[string]

	// Err holds the error of the last failed submission.
	Err *reactive.Signal[error]

	Submitted *reactive.Trigger
}

// NewForm creates an empty form titled "New".
func NewForm(rt *reactive.Runtime) *NewDocumentForm {
	return &NewDocumentForm{
		Type:      reactive.NewSignal(rt, NewText, reactive.Named("form.type")),
		Name:      reactive.NewSignal(rt, "", reactive.Named("form.name")),
		Directory: reactive.NewSignal(rt, "", reactive.Named("form.directory")),
		Title:     reactive.NewSignal(rt, "New", reactive.Named("form.title")),
		Err:       reactive.NewSignal[error](rt, nil, reactive.Named("form.err")),
		Submitted: reactive.NewTrigger(rt, reactive.Named("form.submitted")),
	}
}

func (*NewDocumentForm) Kind() Kind { return KindNewForm }
func (*NewDocumentForm) document()  {}

// Request is the current input of a form.
type Request struct {
	Kind      NewKind
	Name      string
	Directory string
}

// Request reads the form input without tracking.
func (f *NewDocumentForm) Request() Request {
	return Request{
		Kind:      f.Type.Peek(),
		Name:      f.Name.Peek(),
		Directory: f.Directory.Peek(),
	}
}

// Submit fires the Submitted trigger.
func (f *NewDocumentForm) Submit() {
	f.Submitted.Notify()
}
