package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/speech_gateway/internal/ports"
)

type archiveService struct {
	client ports.S3Client
	prefix string
	now    func() time.Time
}

func NewArchiveService(client ports.S3Client, prefix string) ports.ArchiveService {
	return &archiveService{client: client, prefix: prefix, now: time.Now}
}

// ObjectKey — путь в бакете
func (s *archiveService) ObjectKey(filename string) string {
	date := s.now().Format("2006-01-02")
	return fmt.Sprintf("%s/%s/%s", s.prefix, date, filepath.Base(filename))
}

func (s *archiveService) Archive(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	return s.client.PutObject(ctx, s.ObjectKey(path), f, info.Size(), "audio/mpeg")
}
