// Package preview renders hover markdown for link targets and for embedded
// tool-call and inline-attachment blocks.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar"
)

// Options bound the work one preview may do.
type Options struct {
	// MaxBytes caps the snippet read from a text file.
	MaxBytes int
	// GlobLimit caps listed glob matches and directory entries.
	GlobLimit int
}

func (o Options) withDefaults() Options {
	if o.MaxBytes <= 0 {
		o.MaxBytes = 2048
	}
	if o.GlobLimit <= 0 {
		o.GlobLimit = 20
	}
	return o
}

// Kind classifies a link target.
type Kind uint8

const (
	KindRemote Kind = iota
	KindGlob
	KindMissing
	KindDirectory
	KindBinary
	KindEmpty
	KindText
)

// Link renders a hover for target, resolving relative paths and $PWD
// against baseDir. Remote targets get no preview and yield "".
func Link(target, baseDir string, opts Options) string {
	out, _ := classify(target, baseDir, opts.withDefaults())
	return out
}

// Classify reports how Link treats target.
func Classify(target, baseDir string, opts Options) Kind {
	_, kind := classify(target, baseDir, opts.withDefaults())
	return kind
}

func classify(target, baseDir string, opts Options) (string, Kind) {
	p, local := LocalPath(target, baseDir)
	if !local {
		return "", KindRemote
	}
	if isGlob(p) {
		return globPreview(p, opts), KindGlob
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("File not found: `%s`", p), KindMissing
		}
		return fmt.Sprintf("Cannot read `%s`", p), KindBinary
	}
	if info.IsDir() {
		return dirPreview(p, opts), KindDirectory
	}
	return filePreview(p, opts)
}

// LocalPath maps a link target to a filesystem path. ok is false for
// targets with a non-file scheme.
func LocalPath(target, baseDir string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" || strings.HasPrefix(target, "#") {
		return "", false
	}
	if rest, ok := strings.CutPrefix(target, "file://"); ok {
		target = rest
	} else if hasScheme(target) {
		return "", false
	}
	if i := strings.IndexByte(target, '#'); i > 0 {
		target = target[:i]
	}
	target = expandPWD(target, baseDir)
	if strings.HasPrefix(target, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			target = filepath.Join(home, target[2:])
		}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}
	return filepath.Clean(target), true
}

func expandPWD(p, baseDir string) string {
	for _, v := range []string{"${PWD}", "$PWD"} {
		if rest, ok := strings.CutPrefix(p, v); ok {
			return baseDir + rest
		}
	}
	return p
}

func hasScheme(url string) bool {
	for i := 0; i < len(url); i++ {
		ch := url[i]
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		case ch == ':' && i > 1:
			return true
		default:
			return false
		}
	}
	return false
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func globPreview(pattern string, opts Options) string {
	matches, err := doublestar.Glob(pattern)
	if err != nil {
		return fmt.Sprintf("Invalid glob pattern `%s`: %v", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No files match `%s`", pattern)
	}
	sort.Strings(matches)
	var b strings.Builder
	fmt.Fprintf(&b, "Glob `%s`\n\n", pattern)
	for i, m := range matches {
		if i == opts.GlobLimit {
			fmt.Fprintf(&b, "\n… and %d more (%d total)", len(matches)-opts.GlobLimit, len(matches))
			break
		}
		fmt.Fprintf(&b, "- `%s`\n", m)
	}
	return strings.TrimRight(b.String(), "\n")
}

func dirPreview(dir string, opts Options) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("Cannot read directory `%s`", dir)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Directory `%s`", dir)
	if len(entries) == 0 {
		b.WriteString(" (empty)")
		return b.String()
	}
	b.WriteString("\n\n")
	for i, e := range entries {
		if i == opts.GlobLimit {
			fmt.Fprintf(&b, "\n… and %d more (%d total)", len(entries)-opts.GlobLimit, len(entries))
			break
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintf(&b, "- `%s`\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func filePreview(p string, opts Options) (string, Kind) {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Sprintf("Cannot read `%s`", p), KindBinary
	}
	defer f.Close()
	buf, err := io.ReadAll(io.LimitReader(f, int64(opts.MaxBytes)+1))
	if err != nil {
		return fmt.Sprintf("Cannot read `%s`", p), KindBinary
	}
	if len(buf) == 0 {
		return fmt.Sprintf("Empty file `%s`", p), KindEmpty
	}
	truncated := len(buf) > opts.MaxBytes
	if truncated {
		buf = buf[:opts.MaxBytes]
		for i := 0; i < utf8.UTFMax && len(buf) > 0 && !utf8.Valid(buf); i++ {
			buf = buf[:len(buf)-1]
		}
	}
	if bytes.IndexByte(buf, 0) >= 0 || !utf8.Valid(buf) {
		return fmt.Sprintf("Binary file `%s`, no preview", p), KindBinary
	}
	var b strings.Builder
	fmt.Fprintf(&b, "`%s`\n\n", p)
	b.WriteString(Fence(string(buf), language(p)))
	if truncated {
		b.WriteString("\n\n… (truncated)")
	}
	return b.String(), KindText
}

// Fence wraps text in a code fence longer than any backtick run inside it.
func Fence(text, lang string) string {
	longest, run := 0, 0
	for i := 0; i < len(text); i++ {
		if text[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	fence := strings.Repeat("`", n)
	return fence + lang + "\n" + strings.TrimRight(text, "\n") + "\n" + fence
}

func language(p string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
	switch ext {
	case "md", "lec":
		return "markdown"
	case "yml":
		return "yaml"
	case "py":
		return "python"
	case "js":
		return "javascript"
	case "ts":
		return "typescript"
	case "sh":
		return "bash"
	case "txt", "":
		return ""
	}
	return ext
}
