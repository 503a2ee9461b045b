package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h))
	return buf.Bytes()
}

func createTestGIF(w, h int) []byte {
	var buf bytes.Buffer
	gif.Encode(&buf, solid(w, h), nil)
	return buf.Bytes()
}

func TestNormalizeSmallImagesUnchanged(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
	}{
		{"jpeg", createTestJPEG(50, 50), "image/jpeg"},
		{"png", createTestPNG(50, 50), "image/png"},
		{"gif", createTestGIF(50, 50), "image/gif"},
	}

	for _, tt := range tests {
		result, err := Normalize(tt.data)
		if err != nil {
			t.Fatalf("%s: Normalize: %v", tt.name, err)
		}
		if result.MIME != tt.mime {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.mime, result.MIME)
		}
		if result.Resized {
			t.Errorf("%s: small image should not be resized", tt.name)
		}
		if !bytes.Equal(result.Data, tt.data) {
			t.Errorf("%s: small image bytes should be untouched", tt.name)
		}
	}
}

func TestNormalizeDownscaleKeepsFormat(t *testing.T) {
	result, err := Normalize(createTestPNG(2048, 1024))
	if err != nil {
		t.Fatalf("Normalize large image: %v", err)
	}
	if !result.Resized {
		t.Error("expected large image to be resized")
	}
	if result.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", result.MIME)
	}

	img, format, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png output, got %s", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() != MaxDimension || bounds.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeDownscaleJPEG(t *testing.T) {
	result, err := Normalize(createTestJPEG(1024, 2048))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeInvalidFormat(t *testing.T) {
	if _, err := Normalize([]byte("not an image")); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNormalizeTruncatedImage(t *testing.T) {
	data := createTestPNG(10, 10)
	if _, err := Normalize(data[:20]); err == nil {
		t.Error("expected error for truncated image")
	}
}
