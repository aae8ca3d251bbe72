package textprep

import (
	"iter"
	"strings"
)

const DefaultMaxWords = 50

// Chunks splits text on whitespace and yields groups of up to maxWords words
// joined by single spaces, in order. The sequence re-splits on every range.
func Chunks(text string, maxWords int) iter.Seq[string] {
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}
	return func(yield func(string) bool) {
		words := strings.Fields(text)
		for i := 0; i < len(words); i += maxWords {
			end := min(i+maxWords, len(words))
			if !yield(strings.Join(words[i:end], " ")) {
				return
			}
		}
	}
}

// CollectChunks drains Chunks into a slice.
func CollectChunks(text string, maxWords int) []string {
	var out []string
	for c := range Chunks(text, maxWords) {
		out = append(out, c)
	}
	return out
}
