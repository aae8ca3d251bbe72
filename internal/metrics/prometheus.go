package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus collectors of the speech gateway
type Metrics struct {
	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Synthesis
	ChunksSynthesized  prometheus.Counter
	SynthesisDuration  prometheus.Histogram
	SynthesisFailures  prometheus.Counter
	OutputAudioSeconds prometheus.Histogram

	// Transcription
	TranscriptionDuration prometheus.Histogram
	TranscriptionFailures prometheus.Counter
	UploadSize            prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speech_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		}, []string{"route"}),

		ChunksSynthesized: f.NewCounter(prometheus.CounterOpts{
			Name: "speech_tts_chunks_total",
			Help: "Total number of text chunks sent to the synthesis engine",
		}),
		SynthesisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_tts_engine_call_duration_seconds",
			Help:    "Duration of a single synthesis engine call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		SynthesisFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "speech_tts_failures_total",
			Help: "Total number of failed synthesis requests",
		}),
		OutputAudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_tts_output_audio_seconds",
			Help:    "Length of produced audio files",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		TranscriptionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_stt_engine_call_duration_seconds",
			Help:    "Duration of a transcription engine call",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TranscriptionFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "speech_stt_failures_total",
			Help: "Total number of failed transcription requests",
		}),
		UploadSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_stt_upload_size_bytes",
			Help:    "Size of uploaded audio",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
	}
}
