package source

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// File is one text source with its line index.
type File struct {
	Path  string
	Text  string
	Lines *LineIndex
}

// NewFile wraps text read from path.
func NewFile(path, text string) *File {
	return &File{Path: path, Text: text, Lines: NewLineIndex(text)}
}

// Range maps a span within the file to positions.
func (f *File) Range(span Span) Range {
	if f == nil {
		return Range{}
	}
	return f.Lines.Range(span)
}

// FileSet collects the files read while resolving one request, keyed by
// normalized path, so locations in other files can be reported.
type FileSet struct {
	mu    sync.RWMutex
	files map[string]*File
	read  func(string) ([]byte, error)
}

// NewFileSet creates an empty set reading from disk.
func NewFileSet() *FileSet {
	return NewFileSetWithReader(os.ReadFile)
}

// NewFileSetWithReader creates an empty set that loads files with read.
func NewFileSetWithReader(read func(string) ([]byte, error)) *FileSet {
	if read == nil {
		read = os.ReadFile
	}
	return &FileSet{files: make(map[string]*File), read: read}
}

// Add stores text under path, replacing any previous entry.
func (fs *FileSet) Add(path, text string) *File {
	f := NewFile(normalizePath(path), text)
	fs.mu.Lock()
	fs.files[f.Path] = f
	fs.mu.Unlock()
	return f
}

// Load returns the cached file or reads it.
func (fs *FileSet) Load(path string) (*File, error) {
	key := normalizePath(path)
	if f := fs.Get(key); f != nil {
		return f, nil
	}
	data, err := fs.read(key)
	if err != nil {
		return nil, err
	}
	return fs.Add(key, string(data)), nil
}

// Get returns the file stored under path, or nil.
func (fs *FileSet) Get(path string) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.files[normalizePath(path)]
}

// Paths lists stored paths in sorted order.
func (fs *FileSet) Paths() []string {
	fs.mu.RLock()
	out := make([]string, 0, len(fs.files))
	for p := range fs.files {
		out = append(out, p)
	}
	fs.mu.RUnlock()
	sort.Strings(out)
	return out
}

func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}
