package book

import (
	"os"
	"path/filepath"
	"strings"
)

// Format defines a file format reader that extracts chapter-structured
// word tokens.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) ([]Chapter, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Extract parses a file using a registered format, falling back to
// plain text. The TOC comes from the format when it provides one,
// otherwise from chapter titles.
func Extract(filename string) ([]Chapter, []TOCEntry, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext != e {
				continue
			}
			chapters, err := f.Extract(filename)
			if err != nil {
				return nil, nil, err
			}
			if tp, ok := f.(TOCProvider); ok {
				if toc, err := tp.TOC(filename, chapters); err == nil && len(toc) > 0 {
					return chapters, toc, nil
				}
			}
			return chapters, tocFromChapters(chapters), nil
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	title := strings.TrimSuffix(filepath.Base(filename), ext)
	chapters := []Chapter{{Title: title, Tokens: TokenizeText(string(data))}}
	return chapters, tocFromChapters(chapters), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
