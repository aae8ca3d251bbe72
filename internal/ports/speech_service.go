package ports

import (
	"context"
	"io"

	"github.com/Vovarama1992/speech_gateway/internal/speech"
)

type SpeechService interface {
	Synthesize(ctx context.Context, text string) (*speech.Artifact, error)
	Transcribe(ctx context.Context, r io.Reader, filename string) (string, error)
}
