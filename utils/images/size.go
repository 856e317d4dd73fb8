// Package images learns intrinsic sizes of images referenced by documents,
// so layout estimation does not have to guess their height.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size is intrinsic image size in pixels.
type Size struct {
	W, H int
}

// Probe reads image and returns its size. JPEG images are decoded
// completely so EXIF orientation is applied, for other raster formats
// only the header is looked at.
func Probe(data []byte) (Size, string, error) {
	if isSVG(data) {
		s, err := SVGSize(data)
		return s, "svg", err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, "", fmt.Errorf("unable to decode image: %w", err)
	}
	s := Size{W: cfg.Width, H: cfg.Height}
	if format == "jpeg" {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return Size{}, "", fmt.Errorf("unable to decode jpeg: %w", err)
		}
		s = Size{W: img.Bounds().Dx(), H: img.Bounds().Dy()}
	}
	return s, format, nil
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Dir resolves image references relative to a directory of file system and
// remembers probed sizes. It is safe for concurrent use.
type Dir struct {
	fsys fs.FS
	dir  string

	mu    sync.Mutex
	sizes map[string]*Size // nil value marks images which could not be probed
}

// NewDir returns prober for documents located in dir (slash separated, "."
// for the root of fsys).
func NewDir(fsys fs.FS, dir string) *Dir {
	return &Dir{fsys: fsys, dir: path.Clean(dir), sizes: make(map[string]*Size)}
}

// Size returns intrinsic size of image referenced by src. Remote images,
// data URLs and references leaving fsys are not resolved.
func (d *Dir) Size(src string) (float64, float64, bool) {
	name, ok := d.locate(src)
	if !ok {
		return 0, 0, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s, seen := d.sizes[name]
	if !seen {
		if probed, err := d.probe(name); err == nil {
			s = &probed
		}
		d.sizes[name] = s
	}
	if s == nil || s.W <= 0 || s.H <= 0 {
		return 0, 0, false
	}
	return float64(s.W), float64(s.H), true
}

func (d *Dir) locate(src string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil || len(u.Scheme) > 0 || len(u.Host) > 0 || len(u.Path) == 0 {
		return "", false
	}
	name := u.Path
	if !path.IsAbs(name) {
		name = path.Join(d.dir, name)
	}
	name = strings.TrimPrefix(path.Clean(name), "/")
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

func (d *Dir) probe(name string) (Size, error) {
	f, err := d.fsys.Open(name)
	if err != nil {
		return Size{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Size{}, err
	}
	s, _, err := Probe(data)
	return s, err
}
