package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"testing/fstest"

	"golang.org/x/image/bmp"
)

func encoded(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	default:
		t.Fatalf("unsupported format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format string
		want   Size
	}{
		{"png", encoded(t, "png", 40, 30), "png", Size{40, 30}},
		{"jpeg", encoded(t, "jpeg", 16, 8), "jpeg", Size{16, 8}},
		{"bmp", encoded(t, "bmp", 3, 7), "bmp", Size{3, 7}},
		{"svg", []byte(sampleSVG), "svg", Size{100, 50}},
		{"svg without viewbox", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), "svg", Size{300, 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := Probe(tt.data)
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if format != tt.format {
				t.Errorf("Probe() format = %q, want %q", format, tt.format)
			}
			if got != tt.want {
				t.Errorf("Probe() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProbe_Garbage(t *testing.T) {
	if _, _, err := Probe([]byte("definitely not an image")); err == nil {
		t.Error("expected error")
	}
}

func TestDir_Size(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/pic.png":     {Data: encoded(t, "png", 40, 30)},
		"img/logo.svg":     {Data: []byte(sampleSVG)},
		"docs/broken.png":  {Data: []byte("broken")},
		"docs/sub/x.html":  {Data: []byte("<html/>")},
		"docs/sub/up.jpeg": {Data: encoded(t, "jpeg", 10, 20)},
	}
	d := NewDir(fsys, "docs")

	tests := []struct {
		src  string
		w, h float64
		ok   bool
	}{
		{"pic.png", 40, 30, true},
		{"./pic.png?v=2#frag", 40, 30, true},
		{"../img/logo.svg", 100, 50, true},
		{"/img/logo.svg", 100, 50, true},
		{"sub/up.jpeg", 10, 20, true},
		{"../../outside.png", 0, 0, false},
		{"missing.png", 0, 0, false},
		{"broken.png", 0, 0, false},
		{"https://example.com/pic.png", 0, 0, false},
		{"//example.com/pic.png", 0, 0, false},
		{"data:image/png;base64,AAAA", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			w, h, ok := d.Size(tt.src)
			if ok != tt.ok || w != tt.w || h != tt.h {
				t.Errorf("Size(%q) = %v, %v, %v, want %v, %v, %v", tt.src, w, h, ok, tt.w, tt.h, tt.ok)
			}
		})
	}
}

func TestDir_SizeCached(t *testing.T) {
	fsys := fstest.MapFS{"pic.png": {Data: encoded(t, "png", 4, 2)}}
	d := NewDir(fsys, ".")
	if _, _, ok := d.Size("pic.png"); !ok {
		t.Fatal("image not resolved")
	}
	delete(fsys, "pic.png")
	if w, h, ok := d.Size("pic.png"); !ok || w != 4 || h != 2 {
		t.Errorf("cached Size() = %v, %v, %v", w, h, ok)
	}
}
