package textprep

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     []string
	}{
		{
			name:     "empty",
			text:     "",
			maxWords: 50,
			want:     nil,
		},
		{
			name:     "whitespace only",
			text:     " \t\n ",
			maxWords: 50,
			want:     nil,
		},
		{
			name:     "single chunk",
			text:     "one two three",
			maxWords: 50,
			want:     []string{"one two three"},
		},
		{
			name:     "exact multiple",
			text:     "a b c d",
			maxWords: 2,
			want:     []string{"a b", "c d"},
		},
		{
			name:     "short tail",
			text:     "a b c d e",
			maxWords: 2,
			want:     []string{"a b", "c d", "e"},
		},
		{
			name:     "collapses runs of whitespace",
			text:     "Hello exclamation mark  Price:  dollar 5",
			maxWords: 3,
			want:     []string{"Hello exclamation mark", "Price: dollar 5"},
		},
		{
			name:     "non-positive max falls back to default",
			text:     "a b c",
			maxWords: 0,
			want:     []string{"a b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectChunks(tt.text, tt.maxWords)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d chunks %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunksPreserveWords(t *testing.T) {
	words := make([]string, 0, 137)
	for i := range 137 {
		words = append(words, fmt.Sprintf("w%d", i))
	}
	text := strings.Join(words, "  \n")

	for _, maxWords := range []int{1, 2, 7, 50, 136, 137, 500} {
		chunks := CollectChunks(text, maxWords)

		if joined := strings.Join(chunks, " "); joined != strings.Join(words, " ") {
			t.Errorf("maxWords=%d: rejoined chunks differ from input words", maxWords)
		}

		for i, c := range chunks {
			n := len(strings.Fields(c))
			if i < len(chunks)-1 && n != maxWords {
				t.Errorf("maxWords=%d: chunk %d has %d words", maxWords, i, n)
			}
			if i == len(chunks)-1 && (n < 1 || n > maxWords) {
				t.Errorf("maxWords=%d: last chunk has %d words", maxWords, n)
			}
		}
	}
}

func TestChunksRestartable(t *testing.T) {
	seq := Chunks("a b c d e", 2)

	var first, second []string
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}

	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Errorf("second pass %q differs from first %q", second, first)
	}
}

func TestChunksEarlyStop(t *testing.T) {
	var got []string
	for c := range Chunks("a b c d e f", 2) {
		got = append(got, c)
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 || got[1] != "c d" {
		t.Errorf("unexpected chunks after break: %q", got)
	}
}
