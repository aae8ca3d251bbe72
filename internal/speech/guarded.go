package speech

import "context"

// Guarded limits concurrent calls into a shared Transcriber.
type Guarded struct {
	next Transcriber
	sem  chan struct{}
}

func NewGuarded(next Transcriber, maxConcurrent int) *Guarded {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Guarded{next: next, sem: make(chan struct{}, maxConcurrent)}
}

func (g *Guarded) Transcribe(ctx context.Context, filePath string) ([]Segment, error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-g.sem }()

	return g.next.Transcribe(ctx, filePath)
}

// Close closes the wrapped transcriber when it holds resources.
func (g *Guarded) Close() error {
	if c, ok := g.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
