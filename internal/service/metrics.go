package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Операции сервиса для меток метрик.
const (
	OperationClassify   = "classify"
	OperationSoundscape = "soundscape"
	OperationTriggers   = "triggers"
)

// Статусы анализа.
const (
	StatusSuccess  = "success"
	StatusInvalid  = "invalid"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundscape_analyses_total",
			Help: "Total number of text analyses, partitioned by operation, scene type and status.",
		},
		[]string{"operation", "scene_type", "status"},
	)
	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundscape_analysis_duration_seconds",
			Help:    "Histogram of text analysis durations.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
	triggersDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soundscape_triggers_detected",
			Help:    "Number of trigger words detected per analysed text.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
	moodFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soundscape_mood_oracle_fallbacks_total",
			Help: "Total number of times rule-based mood scoring was used because the emotion oracle failed.",
		},
	)
)
