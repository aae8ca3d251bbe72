package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/speech_gateway/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	h *SpeechHandler,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	requestsPerMinute int,
) {
	r.Use(
		httputil.RecoverMiddleware,
		MetricsMiddleware(m),
	)

	// --- service ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", metricsHandler)

	// --- recorder page ---
	r.Get("/record", h.RecordPage)

	// --- speech ---
	r.Group(func(pr chi.Router) {
		pr.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))

		pr.Post("/tts/", h.TTS)
		pr.Post("/tts", h.TTS)
		pr.Post("/stt/", h.STT)
		pr.Post("/stt", h.STT)
	})
}
