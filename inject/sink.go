package inject

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
)

// sink stores produced files under names relative to destination.
type sink interface {
	write(name string, fn func(w io.Writer) error) error
	// replace stores data regardless of what is already there.
	replace(name string, data []byte) error
	// location returns human readable location of named output.
	location(name string) string
	close() error
}

// newSink selects archive output when destination is a zip file name,
// otherwise destination is a directory.
func newSink(dst string, overwrite bool, log *zap.Logger) (sink, error) {
	if strings.EqualFold(filepath.Ext(dst), ".zip") {
		return newZipSink(dst, overwrite, log)
	}
	return &dirSink{dst: dst, overwrite: overwrite, log: log}, nil
}

type dirSink struct {
	dst       string
	overwrite bool
	log       *zap.Logger
}

func (s *dirSink) location(name string) string {
	return filepath.Join(s.dst, name)
}

func (s *dirSink) write(name string, fn func(w io.Writer) error) (err error) {
	name = s.location(name)
	if err := prepareOutput(name, s.overwrite, s.log); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

func (s *dirSink) replace(name string, data []byte) error {
	name = s.location(name)
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return os.WriteFile(name, data, 0644)
}

func (s *dirSink) close() error {
	return nil
}

func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// zipSink collects results in an archive. Archive is assembled in a
// temporary file next to destination and replaces it on close, entries of
// already existing archive which were not produced again are kept.
type zipSink struct {
	dst       string
	overwrite bool
	log       *zap.Logger

	tmp     *os.File
	w       *fixzip.Writer
	old     *fixzip.ReadCloser
	oldName map[string]bool
	written map[string]bool
}

func newZipSink(dst string, overwrite bool, log *zap.Logger) (*zipSink, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}
	s := &zipSink{dst: dst, overwrite: overwrite, log: log, oldName: make(map[string]bool), written: make(map[string]bool)}

	if _, err := os.Stat(dst); err == nil {
		if s.old, err = fixzip.OpenReader(dst); err != nil {
			return nil, fmt.Errorf("unable to read archive file (%s): %w", dst, err)
		}
		for _, file := range s.old.File {
			s.oldName[file.Name] = true
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		s.closeOld()
		return nil, fmt.Errorf("unable to create target file (%s): %w", dst, err)
	}
	s.tmp, s.w = tmp, fixzip.NewWriter(tmp)
	return s, nil
}

func (s *zipSink) location(name string) string {
	return s.dst + "!" + filepath.ToSlash(name)
}

func (s *zipSink) write(name string, fn func(w io.Writer) error) error {
	name = filepath.ToSlash(name)
	if s.written[name] {
		return fmt.Errorf("output file already exists: %s", s.location(name))
	}
	if s.oldName[name] {
		if !s.overwrite {
			return fmt.Errorf("output file already exists: %s", s.location(name))
		}
		s.log.Warn("Overwriting existing file", zap.String("file", s.location(name)))
	}
	w, err := s.w.Create(name)
	if err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", s.location(name), err)
	}
	s.written[name] = true
	return fn(w)
}

func (s *zipSink) replace(name string, data []byte) error {
	name = filepath.ToSlash(name)
	if s.written[name] {
		return nil
	}
	w, err := s.w.Create(name)
	if err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", s.location(name), err)
	}
	s.written[name] = true
	_, err = w.Write(data)
	return err
}

func (s *zipSink) close() (err error) {
	defer func() {
		if err != nil {
			s.tmp.Close()
			os.Remove(s.tmp.Name())
		}
	}()
	if s.old != nil {
		for _, file := range s.old.File {
			if s.written[file.Name] {
				continue
			}
			// unset data descriptor flag.
			file.Flags &= ^fixzip.FlagDataDescriptor
			if err := s.w.CopyFile(file); err != nil {
				s.closeOld()
				return fmt.Errorf("unable to copy archive entry (%s): %w", file.Name, err)
			}
		}
		s.closeOld()
	}
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", s.dst, err)
	}
	if err := s.tmp.Close(); err != nil {
		return err
	}
	return os.Rename(s.tmp.Name(), s.dst)
}

func (s *zipSink) closeOld() {
	if s.old != nil {
		s.old.Close()
		s.old = nil
	}
}
