package descriptor

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// String is source data whose canonical form is the string itself.
type String string

// CanonicalString returns s unchanged.
func (s String) CanonicalString() string {
	return string(s)
}

// URL is a remote image location.
type URL struct {
	u *url.URL
}

// ParseURL parses raw into URL source data.
func ParseURL(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("failed to parse url: %w", err)
	}
	return URL{u: u}, nil
}

// NewURL wraps an already parsed URL. The URL is copied.
//
// A nil u yields data that New rejects.
func NewURL(u *url.URL) URL {
	if u == nil {
		return URL{}
	}
	c := *u
	return URL{u: &c}
}

// URL returns a copy of the wrapped URL.
func (s URL) URL() *url.URL {
	if s.u == nil {
		return nil
	}
	c := *s.u
	return &c
}

// Valid reports whether s wraps a URL.
func (s URL) Valid() bool {
	return s.u != nil
}

// CanonicalString lowercases scheme and host, sorts the query by key and drops
// the fragment, so URLs differing only in parameter order share a key.
func (s URL) CanonicalString() string {
	if s.u == nil {
		return ""
	}
	c := *s.u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	c.RawFragment = ""
	c.RawQuery = c.Query().Encode()
	c.ForceQuery = false
	return c.String()
}

// File is a local image file identified by path, size and modification time.
//
// Editing the file changes its canonical form, and therefore its key.
type File struct {
	Path    string
	Size    int64
	ModTime int64 // unix nanoseconds
}

// NewFile stats path and returns its source data with an absolute, clean path.
func NewFile(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", abs)
	}
	return File{Path: abs, Size: stat.Size(), ModTime: stat.ModTime().UnixNano()}, nil
}

// Valid reports whether f names a file.
func (f File) Valid() bool {
	return f.Path != ""
}

// CanonicalString returns "path|size|modtime".
func (f File) CanonicalString() string {
	return fmt.Sprintf("%s|%d|%d", filepath.Clean(f.Path), f.Size, f.ModTime)
}
