package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vovarama1992/speech_gateway/internal/audio"
	"github.com/Vovarama1992/speech_gateway/internal/metrics"
	"github.com/Vovarama1992/speech_gateway/internal/textprep"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNothingToSynthesize = errors.New("text has nothing to synthesize")
	ErrTextTooLong         = errors.New("text exceeds the configured limit")
)

type Options struct {
	Voice       string
	MaxWords    int
	MaxChars    int
	Concurrency int
	Attempts    int
	CallTimeout time.Duration
	STTTimeout  time.Duration
	TempDir     string
}

// Artifact is the final audio of one synthesis request. The caller owns
// the file and must Close the artifact once it has been served.
type Artifact struct {
	Path   string
	URL    string // set when the file was archived
	Chunks int
}

func (a *Artifact) Close() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	tts       Synthesizer
	stt       Transcriber
	concat    Concatenator
	archive   Archiver
	notifier  Notifier
	sanitizer *textprep.Sanitizer
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
	opts      Options

	probe func(ctx context.Context, path string) (float64, error)
}

func NewService(
	tts Synthesizer,
	stt Transcriber,
	concat Concatenator,
	archive Archiver,
	notifier Notifier,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
	opts Options,
) *Service {
	if opts.MaxWords < 1 {
		opts.MaxWords = textprep.DefaultMaxWords
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}

	return &Service{
		tts:       tts,
		stt:       stt,
		concat:    concat,
		archive:   archive,
		notifier:  notifier,
		sanitizer: textprep.NewSanitizer(),
		metrics:   m,
		log:       log,
		opts:      opts,
		probe:     audio.Duration,
	}
}

// Synthesize cleans and chunks text, synthesizes every chunk in order and
// joins the parts into one mp3. Per-chunk files never outlive the call.
func (s *Service) Synthesize(ctx context.Context, text string) (*Artifact, error) {
	if s.opts.MaxChars > 0 && len([]rune(text)) > s.opts.MaxChars {
		return nil, ErrTextTooLong
	}

	cleaned := s.sanitizer.Clean(text)
	chunks := textprep.CollectChunks(cleaned, s.opts.MaxWords)
	if len(chunks) == 0 {
		return nil, ErrNothingToSynthesize
	}

	ws := newWorkspace(s.opts.TempDir, s.log)
	defer ws.Cleanup()

	start := time.Now()
	s.log.Infow("tts start", "chunks", len(chunks), "chars", len(cleaned), "voice", s.opts.Voice)

	parts, err := s.synthesizeChunks(ctx, ws, chunks)
	if err != nil {
		return nil, s.fail(ctx, "tts", err, fmt.Sprintf("%d chunks, voice %s", len(chunks), s.opts.Voice))
	}

	final := ws.finalPath()
	if err := s.concat.Concat(ctx, parts, final); err != nil {
		return nil, s.fail(ctx, "tts", fmt.Errorf("concat: %w", err), fmt.Sprintf("%d parts", len(parts)))
	}
	ws.release(final)

	art := &Artifact{Path: final, Chunks: len(chunks)}

	if secs, err := s.probe(ctx, final); err == nil {
		s.metrics.OutputAudioSeconds.Observe(secs)
	} else {
		s.log.Debugw("duration probe failed", "path", final, "error", err)
	}

	if s.archive != nil {
		url, err := s.archive.Archive(ctx, final)
		if err != nil {
			s.log.Warnw("archive failed", "path", final, "error", err)
			s.notifier.NotifyAsync(ctx, "tts archive", err, filepath.Base(final))
		} else {
			art.URL = url
		}
	}

	s.log.Infow("tts done", "chunks", len(chunks), "took", time.Since(start))
	return art, nil
}

func (s *Service) synthesizeChunks(ctx context.Context, ws *workspace, chunks []string) ([]string, error) {
	parts := make([]string, len(chunks))
	for i := range chunks {
		parts[i] = ws.chunkPath(i)
	}

	if s.opts.Concurrency == 1 {
		for i, chunk := range chunks {
			if err := s.synthesizeChunk(ctx, chunk, parts[i]); err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i, err)
			}
		}
		return parts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := s.synthesizeChunk(gctx, chunk, parts[i]); err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (s *Service) synthesizeChunk(ctx context.Context, chunk, outPath string) error {
	var lastErr error
	for attempt := 0; attempt < s.opts.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		callCtx, cancel := s.withTimeout(ctx, s.opts.CallTimeout)
		start := time.Now()
		lastErr = s.tts.Synthesize(callCtx, chunk, s.opts.Voice, outPath)
		cancel()

		s.metrics.SynthesisDuration.Observe(time.Since(start).Seconds())
		if lastErr == nil {
			s.metrics.ChunksSynthesized.Inc()
			return nil
		}
		s.log.Warnw("synthesis attempt failed", "attempt", attempt+1, "path", filepath.Base(outPath), "error", lastErr)
	}
	return lastErr
}

// Transcribe stores the upload in a temp file, runs the transcriber on it and
// joins the returned segments with single spaces.
func (s *Service) Transcribe(ctx context.Context, r io.Reader, filename string) (string, error) {
	ws := newWorkspace(s.opts.TempDir, s.log)
	defer ws.Cleanup()

	path := ws.uploadPath(uploadExt(filename))
	size, err := writeFile(path, r)
	if err != nil {
		return "", s.fail(ctx, "stt", fmt.Errorf("store upload: %w", err), filename)
	}
	s.metrics.UploadSize.Observe(float64(size))

	callCtx, cancel := s.withTimeout(ctx, s.opts.STTTimeout)
	defer cancel()

	start := time.Now()
	segments, err := s.stt.Transcribe(callCtx, path)
	s.metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", s.fail(ctx, "stt", err, fmt.Sprintf("%s, %d bytes", filename, size))
	}

	s.log.Infow("stt done", "segments", len(segments), "bytes", size, "took", time.Since(start))
	return JoinSegments(segments), nil
}

// JoinSegments concatenates segment texts with single spaces, in order.
func JoinSegments(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " ")
}

func (s *Service) fail(ctx context.Context, source string, err error, details string) error {
	switch source {
	case "stt":
		s.metrics.TranscriptionFailures.Inc()
	default:
		s.metrics.SynthesisFailures.Inc()
	}
	s.log.Errorw(source+" failed", "error", err, "details", details)
	s.notifier.NotifyAsync(ctx, source, err, details)
	return err
}

func (s *Service) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		return ".mp3"
	}
	return ext
}

func writeFile(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
