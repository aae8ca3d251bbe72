package delivery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_gateway/internal/metrics"
	"github.com/Vovarama1992/speech_gateway/internal/speech"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type fakeSpeech struct {
	dir string

	synthErr   error
	synthURL   string
	gotText    string
	artifact   *speech.Artifact
	transcript string
	sttErr     error
	gotAudio   []byte
	gotName    string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) (*speech.Artifact, error) {
	f.gotText = text
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	path := filepath.Join(f.dir, "temp_abc_final.mp3")
	if err := os.WriteFile(path, []byte("ID3-audio"), 0o600); err != nil {
		return nil, err
	}
	f.artifact = &speech.Artifact{Path: path, URL: f.synthURL, Chunks: 1}
	return f.artifact, nil
}

func (f *fakeSpeech) Transcribe(_ context.Context, r io.Reader, filename string) (string, error) {
	f.gotName = filename
	f.gotAudio, _ = io.ReadAll(r)
	if f.sttErr != nil {
		return "", f.sttErr
	}
	return f.transcript, nil
}

func newTestRouter(t *testing.T, svc *fakeSpeech, maxUpload int64) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := NewSpeechHandler(svc, logger.NewZapLogger(zap.NewNop().Sugar()), maxUpload, 1000)

	r := chi.NewRouter()
	RegisterRoutes(r, h, metrics.NewMetrics(reg), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), 1000)
	return r
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestTTSHandlerServesAudio(t *testing.T) {
	svc := &fakeSpeech{dir: t.TempDir(), synthURL: "https://cdn.example.com/tts/a.mp3"}
	router := newTestRouter(t, svc, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/tts/", strings.NewReader(`{"text":"Hello world"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="output.mp3"`) {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if u := rec.Header().Get("X-Audio-URL"); u != svc.synthURL {
		t.Errorf("unexpected archive url %q", u)
	}
	if rec.Body.String() != "ID3-audio" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if svc.gotText != "Hello world" {
		t.Errorf("text not forwarded: %q", svc.gotText)
	}
	if _, err := os.Stat(svc.artifact.Path); !os.IsNotExist(err) {
		t.Error("final file must be removed after the response")
	}
}

func TestTTSHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		synthErr error
		wantCode int
	}{
		{"invalid json", `{"text":`, nil, http.StatusBadRequest},
		{"nothing to say", `{"text":"@@@"}`, speech.ErrNothingToSynthesize, http.StatusBadRequest},
		{"too long", `{"text":"long"}`, speech.ErrTextTooLong, http.StatusBadRequest},
		{"engine failure", `{"text":"hi"}`, errors.New("edge-tts: NoAudioReceived"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSpeech{dir: t.TempDir(), synthErr: tt.synthErr}
			router := newTestRouter(t, svc, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "NoAudioReceived") {
				t.Error("engine internals must not leak to the client")
			}
		})
	}
}

func TestTTSHandlerTextLimit(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantRunes int
	}{
		{
			name:      "escaped text under limit",
			body:      `{"text":"` + strings.Repeat(`\u041f`, 900) + `"}`,
			wantCode:  http.StatusOK,
			wantRunes: 900,
		},
		{
			name:      "surrogate pairs under limit",
			body:      `{"text":"` + strings.Repeat(`\ud83d\ude00`, 999) + `"}`,
			wantCode:  http.StatusOK,
			wantRunes: 999,
		},
		{
			name:     "plain text over limit",
			body:     `{"text":"` + strings.Repeat("a", 6000) + `"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "body over byte cap",
			body:     `{"text":"` + strings.Repeat("a", 20000) + `"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSpeech{dir: t.TempDir()}
			router := newTestRouter(t, svc, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/tts/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				if !strings.Contains(rec.Body.String(), "text exceeds 1000 characters") {
					t.Errorf("unexpected body %q", rec.Body.String())
				}
				if svc.gotText != "" {
					t.Error("oversized text must not reach the service")
				}
				return
			}
			if n := utf8.RuneCountInString(svc.gotText); n != tt.wantRunes {
				t.Errorf("expected %d characters forwarded, got %d", tt.wantRunes, n)
			}
		})
	}
}

func TestSTTHandler(t *testing.T) {
	svc := &fakeSpeech{transcript: "hello there how are you"}
	router := newTestRouter(t, svc, 1<<20)

	body, contentType := multipartBody(t, "audio", "clip.webm", []byte("webm-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/stt/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["transcription"] != "hello there how are you" {
		t.Errorf("unexpected transcription %q", resp["transcription"])
	}
	if svc.gotName != "clip.webm" || string(svc.gotAudio) != "webm-bytes" {
		t.Errorf("upload not forwarded: %q %q", svc.gotName, svc.gotAudio)
	}
}

func TestSTTHandlerSilence(t *testing.T) {
	router := newTestRouter(t, &fakeSpeech{}, 1<<20)

	body, contentType := multipartBody(t, "audio", "silence.wav", []byte{0})
	req := httptest.NewRequest(http.MethodPost, "/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"transcription":""`) {
		t.Errorf("expected empty transcription, got %s", rec.Body.String())
	}
}

func TestSTTHandlerErrors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		router := newTestRouter(t, &fakeSpeech{}, 1<<20)
		body, contentType := multipartBody(t, "file", "a.mp3", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/stt/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		router := newTestRouter(t, &fakeSpeech{}, 64)
		body, contentType := multipartBody(t, "audio", "a.mp3", bytes.Repeat([]byte("x"), 4096))
		req := httptest.NewRequest(http.MethodPost, "/stt/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		router := newTestRouter(t, &fakeSpeech{sttErr: errors.New("deepgram 401")}, 1<<20)
		body, contentType := multipartBody(t, "audio", "a.mp3", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/stt/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestServiceRoutes(t *testing.T) {
	router := newTestRouter(t, &fakeSpeech{}, 1<<20)

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/ping", http.StatusOK, "pong"},
		{"/record", http.StatusOK, "/stt/"},
		{"/metrics", http.StatusOK, "speech_http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body of %s missing %q", tt.path, tt.contains)
			}
		})
	}
}
