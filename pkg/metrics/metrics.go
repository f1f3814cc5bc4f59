package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meeting_notes"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	MeetingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "meetings_created_total", Help: "Number of meetings persisted."},
	)
	SummarizeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "summarize_failures_total", Help: "Summarization failures by stage."},
		[]string{"stage"},
	)
	VectorWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "vector_writes_total", Help: "Inline vector writes by outcome (stored, deferred)."},
		[]string{"result"},
	)
	ReconcileJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reconcile_jobs_total", Help: "Reconciler job outcomes (completed, retry, failed)."},
		[]string{"result"},
	)
	EmbeddingJobsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "embedding_jobs_pending", Help: "Embedding jobs waiting for the reconciler."},
	)
	SearchRequests = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "search_requests_total", Help: "Number of similarity searches served."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(MeetingsCreated)
	reg.MustRegister(SummarizeFailures)
	reg.MustRegister(VectorWrites)
	reg.MustRegister(ReconcileJobs)
	reg.MustRegister(EmbeddingJobsPending)
	reg.MustRegister(SearchRequests)
}
