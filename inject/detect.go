package inject

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"itoc/common"
)

// srcEncoding is Unicode encoding detected by byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return "unknown"
}

// sniffLen is how much of the file head is examined, markup may start after
// long comments or doctype.
const sniffLen = 8192

var (
	typeXHTML = filetype.NewType("xhtml", "application/xhtml+xml")
	typeHTML  = filetype.NewType("html", "text/html")
)

func init() {
	// order matters, XHTML is the more specific one
	filetype.AddMatcher(typeXHTML, func(buf []byte) bool {
		m := sniffMarkup(buf)
		return m.prolog && m.root
	})
	filetype.AddMatcher(typeHTML, func(buf []byte) bool {
		m := sniffMarkup(buf)
		return m.doctype || m.root
	})
}

type markup struct {
	prolog  bool // <?xml ...?>
	doctype bool // <!DOCTYPE html>
	root    bool // <html> is the first element
}

// sniffMarkup tokenizes document head up to the first element. Comments,
// whitespace and processing instructions may precede it.
func sniffMarkup(buf []byte) markup {
	var m markup
	l := html.NewLexer(parse.NewInput(bytes.NewReader(buf)))
	for {
		tt, data := l.Next()
		switch tt {
		case html.ErrorToken:
			return m
		case html.CommentToken:
			if bytes.HasPrefix(bytes.ToLower(data), []byte("<?xml")) {
				m.prolog = true
			}
		case html.DoctypeToken:
			decl := bytes.TrimSuffix(bytes.ToLower(data), []byte(">"))
			decl = bytes.TrimPrefix(decl, []byte("<!doctype"))
			if fields := bytes.Fields(decl); len(fields) > 0 && bytes.Equal(fields[0], []byte("html")) {
				m.doctype = true
			}
		case html.StartTagToken:
			m.root = bytes.EqualFold(l.Text(), []byte("html"))
			return m
		case html.TextToken:
			if len(bytes.TrimSpace(data)) > 0 {
				return m
			}
		}
	}
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func detectUTF(buf []byte) srcEncoding {
	switch {
	// UTF-32LE must be checked before UTF-16LE, they share first two bytes
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 without byte order mark.
// Documents without BOM are returned as is, their encoding is handled by
// parser according to XML prolog.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	// this should never happen
	panic(fmt.Sprintf("unsupported source encoding %d", enc))
}

func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks both file extension and content.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// detectDocument decides if named content is a document we can process.
// Markdown is recognized by extension only, markup files must also look
// like markup.
func detectDocument(name string, head []byte) (common.InputFmt, srcEncoding, bool) {
	format, ok := common.InputFmtFromName(name)
	if !ok {
		return 0, encUnknown, false
	}
	enc := detectUTF(head)
	if format == common.InputFmtMarkdown {
		return format, enc, true
	}

	text := head
	if enc != encUnknown {
		// partial trailing sequence is not important for sniffing
		text, _ = io.ReadAll(selectReader(bytes.NewReader(head), enc))
	}
	kind, err := filetype.Match(text)
	if err != nil || (kind != typeHTML && kind != typeXHTML) {
		return 0, encUnknown, false
	}
	return format, enc, true
}

func isDocumentFile(path string) (common.InputFmt, srcEncoding, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, encUnknown, false, err
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return 0, encUnknown, false, err
	}
	format, enc, ok := detectDocument(path, head)
	return format, enc, ok, nil
}

func isDocumentInArchive(f *zip.File) (common.InputFmt, srcEncoding, bool, error) {
	if _, ok := common.InputFmtFromName(f.Name); !ok {
		// do not decompress what cannot be used
		return 0, encUnknown, false, nil
	}
	r, err := f.Open()
	if err != nil {
		return 0, encUnknown, false, err
	}
	defer r.Close()

	head, err := readHead(r)
	if err != nil {
		return 0, encUnknown, false, err
	}
	format, enc, ok := detectDocument(f.Name, head)
	return format, enc, ok, nil
}

// Source is an opened document producing UTF-8 or text in encoding declared
// by its XML prolog.
type Source struct {
	io.Reader
	Format common.InputFmt

	file *os.File
}

func (s *Source) Close() error {
	return s.file.Close()
}

// OpenDocument opens file when it is recognized as document, otherwise
// returned source is nil.
func OpenDocument(path string) (*Source, error) {
	format, enc, ok, err := isDocumentFile(path)
	if err != nil || !ok {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Source{Reader: selectReader(f, enc), Format: format, file: f}, nil
}
