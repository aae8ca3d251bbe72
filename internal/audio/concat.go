// Package audio joins synthesized segments into one mp3 using ffmpeg.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var ErrNoSegments = errors.New("no audio segments to concatenate")

// Concatenator decodes segments in order and exports them as a single mp3.
type Concatenator struct {
	Binary  string // ffmpeg executable, "ffmpeg" when empty
	Bitrate string // mp3 bitrate, "128k" when empty
}

func NewConcatenator() *Concatenator {
	return &Concatenator{Binary: "ffmpeg", Bitrate: "128k"}
}

// Concat writes parts, in slice order, to output. The concat list used by
// ffmpeg lives next to output and is removed before returning.
func (c *Concatenator) Concat(ctx context.Context, parts []string, output string) error {
	if len(parts) == 0 {
		return ErrNoSegments
	}

	listPath := strings.TrimSuffix(output, filepath.Ext(output)) + "_list.txt"
	if err := writeConcatList(listPath, parts); err != nil {
		return err
	}
	defer os.Remove(listPath)

	bin := c.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, c.args(listPath, output)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (c *Concatenator) args(listPath, output string) []string {
	bitrate := c.Bitrate
	if bitrate == "" {
		bitrate = "128k"
	}

	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(output, ffmpeg.KwArgs{
			"c:a": "libmp3lame",
			"b:a": bitrate,
		}).
		OverWriteOutput().
		GetArgs()
}

// writeConcatList writes an ffmpeg concat demuxer list with absolute paths.
func writeConcatList(path string, parts []string) error {
	var b strings.Builder
	for _, p := range parts {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		// single quotes are closed, escaped and reopened
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
