package inject

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"itoc/common"
)

const sampleXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Sample</title></head>
<body>
<div id="table-of-contents__container"></div>
<h2 id="one">One</h2>
<p>First paragraph.</p>
<h3 id="one-a">One A</h3>
<h2 id="two">Two</h2>
<div class="divs-go-to__container"></div>
</body>
</html>
`

const sampleHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sample</title></head>
<body>
<div id="table-of-contents__container"></div>
<h2>One</h2>
<p>Text<br>more text</p>
<h2>Two</h2>
<div class="divs-go-to__container"></div>
</body>
</html>
`

func encodeWithTransformer(t *testing.T, data []byte, encoder transform.Transformer) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}

func encodeSample(t *testing.T, data []byte, enc srcEncoding) []byte {
	t.Helper()
	switch enc {
	case encUnknown:
		return data
	case encUTF8:
		return append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		return encodeWithTransformer(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	case encUTF16LittleEndian:
		return encodeWithTransformer(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case encUTF32BigEndian:
		return encodeWithTransformer(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())
	case encUTF32LittleEndian:
		return encodeWithTransformer(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())
	}
	t.Fatalf("unsupported encoding: %v", enc)
	return nil
}

var allEncodings = []srcEncoding{encUnknown, encUTF8, encUTF16BigEndian, encUTF16LittleEndian, encUTF32BigEndian, encUTF32LittleEndian}

func TestDetectUTF(t *testing.T) {
	for _, enc := range allEncodings {
		t.Run(enc.String(), func(t *testing.T) {
			if got := detectUTF(encodeSample(t, []byte(sampleXHTML), enc)); got != enc {
				t.Errorf("detectUTF() = %v, want %v", got, enc)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	for _, enc := range allEncodings {
		t.Run(enc.String(), func(t *testing.T) {
			data := encodeSample(t, []byte(sampleXHTML), enc)
			out, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(out) != sampleXHTML {
				t.Errorf("decoded text differs:\n%q", out)
			}
		})
	}
}

func TestSelectReader_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown encoding")
		}
	}()
	selectReader(bytes.NewReader(nil), srcEncoding(99))
}

func TestDetectDocument(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		data   []byte
		ok     bool
		format common.InputFmt
	}{
		{"xhtml", "a.xhtml", []byte(sampleXHTML), true, common.InputFmtXhtml},
		{"html", "a.html", []byte(sampleHTML), true, common.InputFmtHtml},
		{"htm upper case", "A.HTM", []byte(sampleHTML), true, common.InputFmtHtml},
		{"xhtml content in html file", "a.html", []byte(sampleXHTML), true, common.InputFmtHtml},
		{"markdown", "README.md", []byte("# Title\n"), true, common.InputFmtMarkdown},
		{"markdown anything goes", "notes.markdown", []byte("<html>"), true, common.InputFmtMarkdown},
		{"html extension plain text", "a.html", []byte("plain text"), false, 0},
		{"unknown extension", "a.txt", []byte(sampleHTML), false, 0},
		{"empty", "a.html", nil, false, 0},
		{"comment before root", "a.html", []byte("<!-- generated -->\n<html><body></body></html>"), true, common.InputFmtHtml},
		{"html mentioned in text", "a.html", []byte("about <html> tags"), false, 0},
		{"fragment", "a.html", []byte("<div><h2>x</h2></div>"), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, _, ok := detectDocument(tt.file, tt.data)
			if ok != tt.ok {
				t.Fatalf("detectDocument() ok = %v, want %v", ok, tt.ok)
			}
			if ok && format != tt.format {
				t.Errorf("detectDocument() format = %v, want %v", format, tt.format)
			}
		})
	}
}

func TestSniffMarkup(t *testing.T) {
	tests := []struct {
		name string
		data string
		want markup
	}{
		{"xhtml", sampleXHTML, markup{prolog: true, root: true}},
		{"html", sampleHTML, markup{doctype: true, root: true}},
		{"doctype only", "<!doctype HTML>", markup{doctype: true}},
		{"other doctype", "<!DOCTYPE svg><svg/>", markup{}},
		{"other root", `<?xml version="1.0"?><svg></svg>`, markup{prolog: true}},
		{"upper case root", "<HTML></HTML>", markup{root: true}},
		{"leading text", "text <html>", markup{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMarkup([]byte(tt.data)); got != tt.want {
				t.Errorf("sniffMarkup() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetectDocument_Encodings(t *testing.T) {
	for _, enc := range allEncodings {
		t.Run(enc.String(), func(t *testing.T) {
			_, got, ok := detectDocument("a.xhtml", encodeSample(t, []byte(sampleXHTML), enc))
			if !ok {
				t.Fatal("document not recognized")
			}
			if got != enc {
				t.Errorf("encoding = %v, want %v", got, enc)
			}
		})
	}
}

func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
			t.Fatal(err)
		}
		if got, err := isArchiveFile(path); err != nil || got {
			t.Errorf("isArchiveFile() = %v, %v", got, err)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(path, []byte("not a real zip file"), 0644); err != nil {
			t.Fatal(err)
		}
		if got, err := isArchiveFile(path); err != nil || got {
			t.Errorf("isArchiveFile() = %v, %v", got, err)
		}
	})

	t.Run("valid zip", func(t *testing.T) {
		path := filepath.Join(tmpDir, "docs.zip")
		writeZip(t, path, map[string]string{"a.html": sampleHTML})
		if got, err := isArchiveFile(path); err != nil || !got {
			t.Errorf("isArchiveFile() = %v, %v", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := isArchiveFile(filepath.Join(tmpDir, "missing.zip")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestIsDocumentInArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.zip")
	writeZip(t, path, map[string]string{
		"a.html":  sampleHTML,
		"b.txt":   sampleHTML,
		"c.xhtml": "nothing",
	})
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	want := map[string]bool{"a.html": true, "b.txt": false, "c.xhtml": false}
	for _, f := range zr.File {
		_, _, ok, err := isDocumentInArchive(f)
		if err != nil {
			t.Errorf("%s: %v", f.Name, err)
		}
		if ok != want[f.Name] {
			t.Errorf("%s: ok = %v, want %v", f.Name, ok, want[f.Name])
		}
	}
}

func TestOpenDocument(t *testing.T) {
	dir := t.TempDir()

	utf16 := filepath.Join(dir, "wide.xhtml")
	if err := os.WriteFile(utf16, encodeSample(t, []byte(sampleXHTML), encUTF16LittleEndian), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := OpenDocument(utf16)
	if err != nil || src == nil {
		t.Fatalf("OpenDocument() = %v, %v", src, err)
	}
	defer src.Close()
	if src.Format != common.InputFmtXhtml {
		t.Errorf("format = %v", src.Format)
	}
	text, err := io.ReadAll(src)
	if err != nil || string(text) != sampleXHTML {
		t.Errorf("source was not decoded: %v", err)
	}

	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}
	if src, err := OpenDocument(plain); err != nil || src != nil {
		t.Errorf("OpenDocument() on text = %v, %v", src, err)
	}
	if _, err := OpenDocument(filepath.Join(dir, "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

// writeZip stores files in sorted order, so archive walk order is stable.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	w := zip.NewWriter(f)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}
