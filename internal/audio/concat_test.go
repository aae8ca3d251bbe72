package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestConcatNoSegments(t *testing.T) {
	c := NewConcatenator()
	err := c.Concat(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp3"))
	if !errors.Is(err, ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", err)
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.txt")
	parts := []string{
		filepath.Join(dir, "temp_ab_0.mp3"),
		filepath.Join(dir, "temp_ab_1.mp3"),
		filepath.Join(dir, "it's.mp3"),
	}

	if err := writeConcatList(list, parts); err != nil {
		t.Fatalf("writeConcatList: %v", err)
	}

	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(parts) {
		t.Fatalf("expected %d lines, got %d: %q", len(parts), len(lines), lines)
	}
	if lines[0] != "file '"+parts[0]+"'" || lines[1] != "file '"+parts[1]+"'" {
		t.Errorf("segments out of order: %q", lines)
	}
	if !strings.Contains(lines[2], `it'\''s.mp3`) {
		t.Errorf("quote not escaped: %q", lines[2])
	}
}

func TestConcatArgs(t *testing.T) {
	c := &Concatenator{Bitrate: "96k"}
	args := c.args("/tmp/list.txt", "/tmp/out.mp3")

	wantPairs := [][2]string{
		{"-f", "concat"},
		{"-safe", "0"},
		{"-i", "/tmp/list.txt"},
		{"-c:a", "libmp3lame"},
		{"-b:a", "96k"},
	}
	for _, p := range wantPairs {
		i := slices.Index(args, p[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != p[1] {
			t.Errorf("expected %s %s in %q", p[0], p[1], args)
		}
	}
	if !slices.Contains(args, "/tmp/out.mp3") {
		t.Errorf("output missing from %q", args)
	}
	if !slices.Contains(args, "-y") {
		t.Errorf("overwrite flag missing from %q", args)
	}
}

func TestConcatMissingBinary(t *testing.T) {
	dir := t.TempDir()
	part := filepath.Join(dir, "temp_x_0.mp3")
	if err := os.WriteFile(part, []byte("not audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &Concatenator{Binary: filepath.Join(dir, "no-such-ffmpeg")}
	out := filepath.Join(dir, "temp_x_final.mp3")
	if err := c.Concat(context.Background(), []string{part}, out); err == nil {
		t.Fatal("expected error from missing binary")
	}

	if _, err := os.Stat(filepath.Join(dir, "temp_x_final_list.txt")); !os.IsNotExist(err) {
		t.Errorf("concat list left behind: %v", err)
	}
}
