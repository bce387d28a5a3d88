package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/tabdeck/pkg/arena"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := gradientBitmap()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.bmp"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRegistryOpenClose(t *testing.T) {
	rt := reactive.NewRuntime()
	dir := writeFixtures(t)
	reg := NewRegistry(rt)
	ctx := context.Background()

	a, err := Load(ctx, rt, FileOpener{}, filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(ctx, rt, FileOpener{}, filepath.Join(dir, "b.bmp"))
	if err != nil {
		t.Fatal(err)
	}

	k1 := reg.Insert(a)
	k2 := reg.Insert(b)
	if k1 == k2 {
		t.Fatalf("keys collide: %s", k1)
	}

	if _, ok := reg.Close(k1); !ok {
		t.Fatal("Close(k1) reported absence")
	}
	if _, ok := reg.Get(k1); ok {
		t.Error("closed document still resolves")
	}

	doc, ok := reg.Get(k2)
	if !ok {
		t.Fatal("k2 vanished")
	}
	img, ok := doc.(*ImageDocument)
	if !ok {
		t.Fatalf("k2 = %T, want *ImageDocument", doc)
	}
	if img.Width != NewBitmapSize || img.Height != NewBitmapSize || img.Format != "bmp" {
		t.Errorf("image = %s %dx%d", img.Format, img.Width, img.Height)
	}
}

func TestRegistryNotifiesStructuralChanges(t *testing.T) {
	rt := reactive.NewRuntime()
	reg := NewRegistry(rt)

	runs := 0
	rt.CreateEffect(func() reactive.Cleanup {
		reg.Len()
		runs++
		return nil
	})

	text := NewTextDocument(rt, "a.txt", []byte("a"))
	k := reg.Insert(text)
	reg.Replace(k, NewTextDocument(rt, "a.txt", []byte("b")))
	reg.Close(k)
	reg.Close(k)

	// initial, insert, replace, close; the second close is a no-op.
	if runs != 4 {
		t.Errorf("runs = %d, want 4", runs)
	}
}

func TestRegistryFieldEditIsNotStructural(t *testing.T) {
	rt := reactive.NewRuntime()
	reg := NewRegistry(rt)
	text := NewTextDocument(rt, "a.txt", []byte("a"))
	reg.Insert(text)

	runs := 0
	rt.CreateEffect(func() reactive.Cleanup {
		reg.Keys()
		runs++
		return nil
	})
	text.Content.Set("edited")

	if runs != 1 {
		t.Errorf("content edit re-ran a registry reader: runs = %d", runs)
	}
}

func TestRegistryReplaceKeepsKey(t *testing.T) {
	rt := reactive.NewRuntime()
	reg := NewRegistry(rt)
	form := NewForm(rt)
	k := reg.Insert(form)

	text := NewTextDocument(rt, "/tmp/x.txt", []byte(NewTextContent))
	if err := reg.Replace(k, text); err != nil {
		t.Fatal(err)
	}
	doc, _ := reg.Get(k)
	if doc != Document(text) {
		t.Errorf("Get(k) = %T, want the replacement", doc)
	}
	if diff := cmp.Diff([]Key{k}, reg.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	reg.Close(k)
	if err := reg.Replace(k, text); !errors.Is(err, arena.ErrKeyNotFound) {
		t.Errorf("Replace on closed key = %v, want ErrKeyNotFound", err)
	}
}

func TestRegistryFindPath(t *testing.T) {
	rt := reactive.NewRuntime()
	reg := NewRegistry(rt)
	reg.Insert(NewForm(rt))
	k := reg.Insert(NewTextDocument(rt, "/notes/a.txt", nil))
	reg.Insert(NewImageDocument(rt, "/notes/b.svg", "svg", 0, 0))

	if got, ok := reg.FindPath("/notes/a.txt"); !ok || got != k {
		t.Errorf("FindPath = %s, %v; want %s", got, ok, k)
	}
	if _, ok := reg.FindPath("/notes/c.txt"); ok {
		t.Error("FindPath found a path that was never opened")
	}
}

func TestKindString(t *testing.T) {
	docs := []Document{
		&TextDocument{},
		&ImageDocument{},
		&NewDocumentForm{},
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.Kind().String())
	}
	if diff := cmp.Diff([]string{"text", "image", "new"}, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNewKind(t *testing.T) {
	for _, k := range NewKinds {
		got, err := ParseNewKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseNewKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseNewKind("Spreadsheet"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
