package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsSubmittedTotal atomic.Uint64
	uploadsRejectedTotal  atomic.Uint64
	uploadsFailedTotal    atomic.Uint64

	sessionsStartedTotal   atomic.Uint64
	sessionsCompletedTotal atomic.Uint64
	sessionsStalledTotal   atomic.Uint64
	sessionsFailedTotal    atomic.Uint64
	sessionsRetriedTotal   atomic.Uint64
	sessionsReapedTotal    atomic.Uint64
	pollTicksSkippedTotal  atomic.Uint64

	fetchDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000})
)

// IncUploadSubmitted counts uploads accepted by the backend.
func IncUploadSubmitted() { uploadsSubmittedTotal.Add(1) }

// IncUploadRejected counts selections refused before any backend call.
func IncUploadRejected() { uploadsRejectedTotal.Add(1) }

// IncUploadFailed counts uploads the backend refused or that never reached it.
func IncUploadFailed() { uploadsFailedTotal.Add(1) }

func IncSessionStarted()   { sessionsStartedTotal.Add(1) }
func IncSessionCompleted() { sessionsCompletedTotal.Add(1) }
func IncSessionStalled()   { sessionsStalledTotal.Add(1) }
func IncSessionFailed()    { sessionsFailedTotal.Add(1) }
func IncSessionRetried()   { sessionsRetriedTotal.Add(1) }
func IncSessionReaped()    { sessionsReapedTotal.Add(1) }

// IncPollTickSkipped counts ticks dropped because a fetch was still outstanding.
func IncPollTickSkipped() { pollTicksSkippedTotal.Add(1) }

// PollTicksSkipped returns the current skipped-tick count.
func PollTicksSkipped() uint64 { return pollTicksSkippedTotal.Load() }

// ObserveFetchDurationMs records a document fetch duration in milliseconds.
func ObserveFetchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	fetchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "uploads_submitted_total", "Uploads accepted by the analysis backend", uploadsSubmittedTotal.Load())
	writeCounter(&buf, "uploads_rejected_total", "Selections rejected before upload", uploadsRejectedTotal.Load())
	writeCounter(&buf, "uploads_failed_total", "Uploads that failed at the backend or transport", uploadsFailedTotal.Load())
	writeCounter(&buf, "poll_sessions_started_total", "Poll sessions opened", sessionsStartedTotal.Load())
	writeCounter(&buf, "poll_sessions_completed_total", "Poll sessions that reached completion", sessionsCompletedTotal.Load())
	writeCounter(&buf, "poll_sessions_stalled_total", "Poll sessions that hit a stage timeout", sessionsStalledTotal.Load())
	writeCounter(&buf, "poll_sessions_failed_total", "Poll sessions that lost the backend", sessionsFailedTotal.Load())
	writeCounter(&buf, "poll_sessions_retried_total", "Manual retries applied", sessionsRetriedTotal.Load())
	writeCounter(&buf, "poll_sessions_reaped_total", "Poll sessions torn down after going idle", sessionsReapedTotal.Load())
	writeCounter(&buf, "poll_ticks_skipped_total", "Poll ticks skipped while a fetch was in flight", pollTicksSkippedTotal.Load())
	writeHistogram(&buf, "document_fetch_duration_ms", "Document fetch duration in milliseconds", fetchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound contains it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
