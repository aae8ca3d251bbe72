package speech

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// workspace names and owns the temp files of one request. Every tracked
// file is removed by Cleanup unless it was released to the caller.
type workspace struct {
	dir  string
	base string
	log  *zap.SugaredLogger

	mu    sync.Mutex
	files []string
}

func newWorkspace(dir string, log *zap.SugaredLogger) *workspace {
	return &workspace{
		dir:  dir,
		base: "temp_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		log:  log,
	}
}

// chunkPath is temp_<hex>_<idx>.mp3
func (w *workspace) chunkPath(idx int) string {
	return w.track(fmt.Sprintf("%s_%d.mp3", w.base, idx))
}

// finalPath is temp_<hex>_final.mp3
func (w *workspace) finalPath() string {
	return w.track(w.base + "_final.mp3")
}

// uploadPath is temp_<hex><ext>
func (w *workspace) uploadPath(ext string) string {
	return w.track(w.base + ext)
}

func (w *workspace) track(name string) string {
	path := filepath.Join(w.dir, name)

	w.mu.Lock()
	w.files = append(w.files, path)
	w.mu.Unlock()

	return path
}

// release hands path over to the caller; Cleanup will leave it alone.
func (w *workspace) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, f := range w.files {
		if f == path {
			w.files = append(w.files[:i], w.files[i+1:]...)
			return
		}
	}
}

func (w *workspace) Cleanup() {
	w.mu.Lock()
	files := w.files
	w.files = nil
	w.mu.Unlock()

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.log.Warnw("failed to remove temp file", "path", f, "error", err)
		}
	}
}
