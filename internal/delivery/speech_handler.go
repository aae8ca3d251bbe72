package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_gateway/internal/ports"
	"github.com/Vovarama1992/speech_gateway/internal/speech"
	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

const (
	outputFilename = "output.mp3"
	serviceName    = "speech_gateway"
)

type SpeechHandler struct {
	speech    ports.SpeechService
	log       *logger.ZapLogger
	maxUpload int64
	maxChars  int
}

func NewSpeechHandler(speechService ports.SpeechService, log *logger.ZapLogger, maxUpload int64, maxChars int) *SpeechHandler {
	return &SpeechHandler{
		speech:    speechService,
		log:       log,
		maxUpload: maxUpload,
		maxChars:  maxChars,
	}
}

// TTS: {"text": "..."} → audio/mpeg
func (h *SpeechHandler) TTS(w http.ResponseWriter, r *http.Request) {
	// a \uXXXX surrogate pair is 12 bytes for one character
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxChars)*12+1024)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isTooLarge(err) {
			http.Error(w, fmt.Sprintf("text exceeds %d characters", h.maxChars), http.StatusBadRequest)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if h.maxChars > 0 && utf8.RuneCountInString(req.Text) > h.maxChars {
		http.Error(w, fmt.Sprintf("text exceeds %d characters", h.maxChars), http.StatusBadRequest)
		return
	}

	art, err := h.speech.Synthesize(r.Context(), req.Text)
	switch {
	case errors.Is(err, speech.ErrNothingToSynthesize):
		http.Error(w, "text has nothing to synthesize", http.StatusBadRequest)
		return
	case errors.Is(err, speech.ErrTextTooLong):
		http.Error(w, fmt.Sprintf("text exceeds %d characters", h.maxChars), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "tts failed", Service: serviceName, Error: err})
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := art.Close(); err != nil {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "failed to remove tts output", Service: serviceName, Error: err})
		}
	}()

	f, err := os.Open(art.Path)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "open tts output", Service: serviceName, Error: err})
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "stat tts output", Service: serviceName, Error: err})
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
		return
	}

	if art.URL != "" {
		w.Header().Set("X-Audio-URL", art.URL)
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputFilename))
	http.ServeContent(w, r, outputFilename, info.ModTime(), f)
}

// STT: multipart "audio" → {"transcription": "..."}
func (h *SpeechHandler) STT(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("audio")
	if err != nil {
		if isTooLarge(err) {
			http.Error(w, "upload exceeds "+humanize.IBytes(uint64(h.maxUpload)), http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio", Service: serviceName, Error: err})
		http.Error(w, "missing audio: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	text, err := h.speech.Transcribe(r.Context(), file, header.Filename)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "stt failed", Service: serviceName, Error: err})
		http.Error(w, "transcription failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"transcription": text})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
