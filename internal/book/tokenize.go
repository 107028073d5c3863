package book

import (
	"fmt"
	"regexp"
	"strings"

	"marginalia/internal/layout"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// TokenizeBlocks assigns stable ids to the words of a chapter's
// paragraphs: p<paragraph>_w<word>, both zero-based and scoped to the
// chapter. Ids depend only on content order, never on geometry.
func TokenizeBlocks(blocks []string) []layout.Token {
	var tokens []layout.Token
	para := 0
	for _, block := range blocks {
		words := strings.Fields(block)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			tokens = append(tokens, layout.Token{
				ID:   fmt.Sprintf("p%d_w%d", para, i),
				Text: w,
			})
		}
		para++
	}
	return tokens
}

// TokenizeText treats blank-line separated runs as paragraphs.
func TokenizeText(text string) []layout.Token {
	return TokenizeBlocks(blankLines.Split(text, -1))
}
