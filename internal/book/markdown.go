package book

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files. Headers start
// chapters; blank-line separated blocks are the paragraphs word ids
// are scoped to.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (f *MarkdownFormat) Extract(filename string) ([]Chapter, error) {
	chapters, _, err := extractMarkdown(filename)
	return chapters, err
}

// TOC derives entries from the headers that produced chapters; levels
// follow header depth (h1 = level 0).
func (f *MarkdownFormat) TOC(filename string, chapters []Chapter) ([]TOCEntry, error) {
	extracted, levels, err := extractMarkdown(filename)
	if err != nil {
		return nil, err
	}
	entries := tocFromChapters(extracted)
	for i := range entries {
		if i < len(levels) {
			entries[i].Level = levels[i]
		}
	}
	return entries, nil
}

// extractMarkdown parses a markdown file into chapters and the header
// level of each. Empty sections (a header with no body words) produce
// no chapter, keeping chapter indices dense.
func extractMarkdown(filename string) ([]Chapter, []int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var chapters []Chapter
	var levels []int
	title := ""
	level := 0
	var blocks []string
	var cur []string

	flushBlock := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, " "))
			cur = nil
		}
	}
	flushChapter := func() {
		flushBlock()
		tokens := TokenizeBlocks(blocks)
		if len(tokens) > 0 {
			if title == "" {
				title = "Document"
			}
			chapters = append(chapters, Chapter{Title: title, Tokens: tokens})
			levels = append(levels, level)
		}
		blocks = nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if match := headerRegex.FindStringSubmatch(line); match != nil {
			flushChapter()
			title = strings.TrimSpace(match[2])
			level = len(match[1]) - 1
			continue
		}
		if strings.TrimSpace(line) == "" {
			flushBlock()
			continue
		}
		cur = append(cur, line)
	}
	flushChapter()

	return chapters, levels, scanner.Err()
}
