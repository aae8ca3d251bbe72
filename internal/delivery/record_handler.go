package delivery

import (
	_ "embed"
	"net/http"
)

//go:embed record.html
var recordPage []byte

// RecordPage serves the browser recorder that posts to /stt/.
func (h *SpeechHandler) RecordPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(recordPage)
}
