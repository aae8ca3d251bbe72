package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// EdgeClient drives the edge-tts command line tool. Command may carry
// leading arguments, e.g. "python3 -m edge_tts".
type EdgeClient struct {
	Command string
}

func NewEdgeClient(command string) *EdgeClient {
	if command == "" {
		command = "edge-tts"
	}
	return &EdgeClient{Command: command}
}

func (e *EdgeClient) Synthesize(ctx context.Context, text, voice, outPath string) error {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return errors.New("edge-tts command is empty")
	}

	// "=" form keeps a chunk like "-hello" from being read as a flag
	args := append(argv[1:],
		"--text="+text,
		"--voice="+voice,
		"--write-media="+outPath,
	)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.WaitDelay = 2 * time.Second

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("edge-tts: %w", ctx.Err())
		}
		return fmt.Errorf("edge-tts cli failed: %w, output: %s", err, strings.TrimSpace(string(output)))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("failed to stat output file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("edge-tts generated empty file, output: %s", strings.TrimSpace(string(output)))
	}
	return nil
}
