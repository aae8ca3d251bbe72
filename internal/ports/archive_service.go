package ports

import "context"

// ArchiveService stores produced audio files and returns their public URL.
type ArchiveService interface {
	ObjectKey(filename string) string
	Archive(ctx context.Context, path string) (string, error)
}
