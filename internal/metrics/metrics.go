package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicegate_sessions_active",
		Help: "Currently active call sessions",
	})

	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_sessions_total",
		Help: "Total call sessions by transport kind",
	}, []string{"transport"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voicegate_stage_duration_seconds",
		Help:    "Per-stage latency for one conversational turn",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"stage"})

	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicegate_turn_duration_seconds",
		Help:    "End-to-end latency from final transcript to outbound audio",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	AudioFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_audio_frames_total",
		Help: "Inbound audio frames fed to the recognizer",
	})

	TranscriptEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_transcript_events_total",
		Help: "Transcript events received by finality",
	}, []string{"kind"})

	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_turns_total",
		Help: "Completed conversational turns",
	})

	RetrievalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicegate_retrieval_duration_seconds",
		Help:    "Knowledge retrieval latency (embed + search)",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.5},
	})

	EmbeddingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicegate_embedding_duration_seconds",
		Help:    "Embedding generation latency",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.5},
	})
)
