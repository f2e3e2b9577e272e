package builtin

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spachava753/toolbridge/internal/types"
)

const (
	maxListEntries  = 1000
	maxSearchHits   = 200
	maxReadFileSize = 10 << 20
)

type tools struct {
	root string
}

// ReadFileInput represents the parameters for the read file tool
type ReadFileInput struct {
	Path      string  `json:"path" jsonschema:"required,description=Path of the file relative to the root"`
	StartLine flexInt `json:"start_line,omitempty" jsonschema:"description=First line to return (1-based)"`
	EndLine   flexInt `json:"end_line,omitempty" jsonschema:"description=Last line to return (inclusive)"`
}

// ListFilesInput represents the parameters for the list files tool
type ListFilesInput struct {
	Path      string   `json:"path,omitempty" jsonschema:"description=Directory to list; defaults to the root"`
	Pattern   string   `json:"pattern,omitempty" jsonschema:"description=Glob matched against file names"`
	Recursive flexBool `json:"recursive,omitempty" jsonschema:"description=Descend into subdirectories"`
}

// SearchFilesInput represents the parameters for the search files tool
type SearchFilesInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Regular expression to search for"`
	Path    string `json:"path,omitempty" jsonschema:"description=Directory to search; defaults to the root"`
}

// resolve maps p onto the root and rejects paths that escape it.
func (t tools) resolve(p string) (string, error) {
	if p == "" {
		p = "."
	}
	abs := p
	if !filepath.IsAbs(p) {
		abs = filepath.Join(t.root, p)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(t.root, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %s is outside of %s", p, t.root)
	}
	return abs, nil
}

func (t tools) rel(abs string) string {
	rel, err := filepath.Rel(t.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (t tools) readFile(_ context.Context, in ReadFileInput) (*types.ToolCallResult, error) {
	if in.Path == "" {
		return types.ErrorResult("path parameter is required"), nil
	}
	path, err := t.resolve(in.Path)
	if err != nil {
		return types.ErrorResult(err.Error()), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ErrorResult(fmt.Sprintf("File does not exist: %s", in.Path)), nil
		}
		return types.ErrorResult(fmt.Sprintf("Error checking file: %s", err)), nil
	}
	if info.IsDir() {
		return types.ErrorResult(fmt.Sprintf("Path is a directory, not a file: %s", in.Path)), nil
	}
	if info.Size() > maxReadFileSize {
		return types.ErrorResult(fmt.Sprintf("File is too large to read: %s (%d bytes)", in.Path, info.Size())), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return types.ErrorResult(fmt.Sprintf("Error reading file: %s", err)), nil
	}

	mime := mimetype.Detect(content)
	switch {
	case strings.HasPrefix(mime.String(), "image/"):
		return &types.ToolCallResult{Content: []types.Content{
			types.ImageContent(mime.String(), base64.StdEncoding.EncodeToString(content)),
		}}, nil
	case !isText(mime):
		return types.ErrorResult(fmt.Sprintf("unsupported file type: %s", mime.String())), nil
	}

	if in.StartLine == 0 && in.EndLine == 0 {
		return types.TextResult(string(content)), nil
	}

	lines := strings.SplitAfter(string(content), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	start, end := int(in.StartLine), int(in.EndLine)
	if start < 1 {
		start = 1
	}
	if end == 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return types.ErrorResult(fmt.Sprintf("invalid line range %d-%d for %s with %d lines", in.StartLine, in.EndLine, in.Path, len(lines))), nil
	}
	return types.TextResult(strings.Join(lines[start-1:end], "")), nil
}

func (t tools) listFiles(ctx context.Context, in ListFilesInput) (*types.ToolCallResult, error) {
	dir, err := t.resolve(in.Path)
	if err != nil {
		return types.ErrorResult(err.Error()), nil
	}
	if in.Pattern != "" {
		if _, err := filepath.Match(in.Pattern, ""); err != nil {
			return types.ErrorResult(fmt.Sprintf("invalid pattern %q: %s", in.Pattern, err)), nil
		}
	}

	var entries []string
	truncated := false
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if !in.Recursive {
				entries = appendMatch(entries, in.Pattern, d.Name(), t.rel(path)+"/")
				return filepath.SkipDir
			}
			return nil
		}
		entries = appendMatch(entries, in.Pattern, d.Name(), t.rel(path))
		if len(entries) >= maxListEntries {
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return types.ErrorResult(fmt.Sprintf("Error listing %s: %s", in.Path, err)), nil
	}

	sort.Strings(entries)
	out := strings.Join(entries, "\n")
	if truncated {
		out += fmt.Sprintf("\n(truncated after %d entries)", maxListEntries)
	}
	return types.TextResult(out), nil
}

func appendMatch(entries []string, pattern, name, entry string) []string {
	if pattern != "" {
		if ok, _ := filepath.Match(pattern, name); !ok {
			return entries
		}
	}
	return append(entries, entry)
}

func (t tools) searchFiles(ctx context.Context, in SearchFilesInput) (*types.ToolCallResult, error) {
	if in.Pattern == "" {
		return types.ErrorResult("pattern parameter is required"), nil
	}
	re, err := regexp.Compile(in.Pattern)
	if err != nil {
		return types.ErrorResult(fmt.Sprintf("invalid pattern %q: %s", in.Pattern, err)), nil
	}
	dir, err := t.resolve(in.Path)
	if err != nil {
		return types.ErrorResult(err.Error()), nil
	}

	var hits []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		mime, err := mimetype.DetectFile(path)
		if err != nil || !isText(mime) {
			return nil
		}
		found, err := searchFile(path, t.rel(path), re, maxSearchHits-len(hits))
		if err != nil {
			return err
		}
		hits = append(hits, found...)
		if len(hits) >= maxSearchHits {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return types.ErrorResult(fmt.Sprintf("Error searching %s: %s", in.Path, err)), nil
	}
	if len(hits) == 0 {
		return types.TextResult("No matches found"), nil
	}
	return types.TextResult(strings.Join(hits, "\n")), nil
}

func searchFile(path, name string, re *regexp.Regexp, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hits []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; scanner.Scan() && len(hits) < limit; line++ {
		if re.MatchString(scanner.Text()) {
			hits = append(hits, fmt.Sprintf("%s:%d: %s", name, line, scanner.Text()))
		}
	}
	return hits, scanner.Err()
}
