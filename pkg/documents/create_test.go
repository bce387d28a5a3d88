package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestCreateText(t *testing.T) {
	dir := t.TempDir()
	path, err := FileCreator{}.Create(context.Background(), Request{Kind: NewText, Name: "notes", Directory: dir})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "notes.txt"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != NewTextContent {
		t.Errorf("content = %q", data)
	}
}

func TestCreateBitmap(t *testing.T) {
	dir := t.TempDir()
	path, err := FileCreator{}.Create(context.Background(), Request{Kind: NewBitmap, Name: "pic", Directory: dir})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	if b := img.Bounds(); b.Dx() != NewBitmapSize || b.Dy() != NewBitmapSize {
		t.Fatalf("bounds = %v", b)
	}
	r, g, b, _ := img.At(100, 50).RGBA()
	if r>>8 != 30 || g>>8 != 0 || b>>8 != 15 {
		t.Errorf("pixel (100,50) = %d,%d,%d; want 30,0,15", r>>8, g>>8, b>>8)
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	req := Request{Kind: NewText, Name: "dup", Directory: dir}
	if _, err := (FileCreator{}).Create(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dup.txt"), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FileCreator{}.Create(context.Background(), req)
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("err = %v, want ErrFileExists", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "dup.txt"))
	if string(data) != "mine" {
		t.Error("existing file was overwritten")
	}
}

func TestCreateInvalidName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "  ", "a/b", ".txt"} {
		_, err := FileCreator{}.Create(context.Background(), Request{Kind: NewText, Name: name, Directory: dir})
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestCreateReplacesExtension(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		kind NewKind
		name string
		want string
	}{
		{NewText, "a.txt", "a.txt"},
		{NewText, "report.md", "report.txt"},
		{NewBitmap, "pic.png", "pic.bmp"},
		{NewText, "v1.2.notes", "v1.2.txt"},
	}
	for _, tt := range tests {
		path, err := FileCreator{}.Create(context.Background(), Request{Kind: tt.kind, Name: tt.name, Directory: dir})
		if err != nil {
			t.Fatalf("Create(%q): %v", tt.name, err)
		}
		if want := filepath.Join(dir, tt.want); path != want {
			t.Errorf("Create(%q) = %q, want %q", tt.name, path, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Create(%q) did not write the file: %v", tt.name, err)
		}
	}
}
