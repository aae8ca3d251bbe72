package speech

import "context"

// Segment is one ordered piece of a transcription.
type Segment struct {
	Text  string
	Start float64 // seconds
	End   float64 // seconds
}

// Synthesizer turns text into an audio file written at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outPath string) error
}

// Transcriber turns the audio file at filePath into ordered text segments.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) ([]Segment, error)
}

// Concatenator joins audio parts, in slice order, into output.
type Concatenator interface {
	Concat(ctx context.Context, parts []string, output string) error
}

// Archiver stores a finished file and returns its public URL.
type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}

// Notifier reports pipeline failures out of band.
type Notifier interface {
	NotifyAsync(ctx context.Context, source string, err error, details string)
}
