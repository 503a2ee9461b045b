package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Config{Dir: filepath.Join(t.TempDir(), "uploads")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestIsAllowedExtension(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		filename string
		expected bool
	}{
		{"photo.png", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.gif", true},
		{"archive.tar.gif", true},
		// Case-sensitive, matching the historical behaviour.
		{"photo.JPG", false},
		{"photo.Png", false},
		{"photo.bmp", false},
		{"photo", false},
		{"png", false},
		{"photo.", false},
		{"", false},
	}

	for _, tt := range tests {
		got := m.IsAllowedExtension(tt.filename)
		if got != tt.expected {
			t.Errorf("IsAllowedExtension(%q) = %v, want %v", tt.filename, got, tt.expected)
		}
	}
}

func TestIsAllowedExtensionConfigured(t *testing.T) {
	m, err := New(Config{Dir: t.TempDir(), AllowedExtensions: []string{"webp"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.IsAllowedExtension("a.webp") || m.IsAllowedExtension("a.png") {
		t.Error("configured extensions must replace the defaults")
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.png", "photo.png"},
		{"My cool photo.png", "My_cool_photo.png"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\pic.jpg`, "C_Users_me_pic.jpg"},
		{"  spaced  out .gif", "spaced_out_.gif"},
		{"évian.png", "vian.png"},
		{"...", ""},
		{"con.png", "_con.png"},
	}

	for _, tt := range tests {
		if got := SecureFilename(tt.in); got != tt.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveAndOpen(t *testing.T) {
	m := newTestManager(t)
	data := testPNG(t)

	url, err := m.Save(bytes.NewReader(data), "../my photo.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "/uploads/my_photo.png" {
		t.Fatalf("expected /uploads/my_photo.png, got %q", url)
	}

	f, err := m.Open("my_photo.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, data) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveRejects(t *testing.T) {
	m := newTestManager(t)
	data := testPNG(t)

	tests := []struct {
		name     string
		r        io.Reader
		filename string
	}{
		{"no file", nil, ""},
		{"no filename", bytes.NewReader(data), ""},
		{"disallowed extension", bytes.NewReader(data), "photo.bmp"},
		{"uppercase extension", bytes.NewReader(data), "photo.PNG"},
		{"empty body", bytes.NewReader(nil), "photo.png"},
		{"not an image", strings.NewReader("hello"), "photo.png"},
		{"sanitised away", bytes.NewReader(data), "日本.png"},
	}

	for _, tt := range tests {
		url, err := m.Save(tt.r, tt.filename)
		if err != nil {
			t.Errorf("%s: expected no error, got %v", tt.name, err)
		}
		if url != "" {
			t.Errorf("%s: expected rejection, got %q", tt.name, url)
		}
	}

	entries, _ := os.ReadDir(m.Dir())
	if len(entries) != 0 {
		t.Errorf("expected nothing stored, found %d entries", len(entries))
	}
}

func TestSaveTooLarge(t *testing.T) {
	m, err := New(Config{Dir: t.TempDir(), MaxBytes: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	url, err := m.Save(bytes.NewReader(testPNG(t)), "photo.png")
	if err != nil || url != "" {
		t.Errorf("expected silent rejection of oversized upload, got %q, %v", url, err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	m := newTestManager(t)

	first := testPNG(t)
	m.Save(bytes.NewReader(first), "photo.png")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	second := buf.Bytes()
	m.Save(bytes.NewReader(second), "photo.png")

	got, _ := os.ReadFile(filepath.Join(m.Dir(), "photo.png"))
	if !bytes.Equal(got, second) {
		t.Error("expected last write to win")
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)
	url, _ := m.Save(bytes.NewReader(testPNG(t)), "photo.png")

	if err := m.Delete(url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Open("photo.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Already gone.
	if err := m.Delete(url); err != nil {
		t.Errorf("Delete of missing file: %v", err)
	}
}

func TestDeleteRefusesTraversal(t *testing.T) {
	root := t.TempDir()
	m, err := New(Config{Dir: filepath.Join(root, "uploads")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	victim := filepath.Join(root, "catalog.sqlite3")
	if err := os.WriteFile(victim, []byte("db"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, input := range []string{
		"/uploads/../catalog.sqlite3",
		"../catalog.sqlite3",
		victim,
		"/uploads/",
		"",
		"..",
	} {
		if err := m.Delete(input); !errors.Is(err, ErrOutsideDir) {
			t.Errorf("Delete(%q) = %v, want ErrOutsideDir", input, err)
		}
	}

	if _, err := os.Stat(victim); err != nil {
		t.Errorf("file outside upload directory was touched: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Open("nope.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Open("../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for traversal, got %v", err)
	}
}
