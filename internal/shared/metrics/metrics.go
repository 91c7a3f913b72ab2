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
	signaturesCreatedTotal        atomic.Uint64
	signaturesDeletedTotal        atomic.Uint64
	documentsFullySignedTotal     atomic.Uint64
	signatureRequestsCreatedTotal atomic.Uint64
	signatureRequestsCancelled    atomic.Uint64
	externalSubmitsTotal          atomic.Uint64
	externalSubmitsRejectedTotal  atomic.Uint64
	notificationsSentTotal        atomic.Uint64
	notificationsEnqueuedTotal    atomic.Uint64
	notificationsFailedTotal      atomic.Uint64
	notificationJobsReceived      atomic.Uint64
	notificationJobsDropped       atomic.Uint64

	notificationDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000})
)

// IncSignaturesCreated counts persisted signature records.
func IncSignaturesCreated() { signaturesCreatedTotal.Add(1) }

// IncSignaturesDeleted counts removed signature records.
func IncSignaturesDeleted() { signaturesDeletedTotal.Add(1) }

// IncDocumentsFullySigned counts documents whose completion guard was claimed.
func IncDocumentsFullySigned() { documentsFullySignedTotal.Add(1) }

// IncSignatureRequestsCreated counts external invites issued.
func IncSignatureRequestsCreated() { signatureRequestsCreatedTotal.Add(1) }

// IncSignatureRequestsCancelled counts invites moved to cancelled.
func IncSignatureRequestsCancelled() { signatureRequestsCancelled.Add(1) }

// IncExternalSubmits counts successful token submissions.
func IncExternalSubmits() { externalSubmitsTotal.Add(1) }

// IncExternalSubmitsRejected counts token submissions refused for state reasons.
func IncExternalSubmitsRejected() { externalSubmitsRejectedTotal.Add(1) }

// IncNotificationsSent counts delivered notifications.
func IncNotificationsSent() { notificationsSentTotal.Add(1) }

// IncNotificationsEnqueued counts notifications handed to the queue for the
// worker to deliver.
func IncNotificationsEnqueued() { notificationsEnqueuedTotal.Add(1) }

// IncNotificationsFailed counts notifications that failed and were dropped.
func IncNotificationsFailed() { notificationsFailedTotal.Add(1) }

// IncNotificationJobsReceived counts queue messages picked up by the worker.
func IncNotificationJobsReceived() { notificationJobsReceived.Add(1) }

// IncNotificationJobsDropped counts queue messages deleted without delivery.
func IncNotificationJobsDropped() { notificationJobsDropped.Add(1) }

// ObserveNotificationDurationMs records a delivery duration in milliseconds.
func ObserveNotificationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	notificationDuration.Observe(value)
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
	writeCounter(&buf, "signatures_created_total", "Total signature records created", signaturesCreatedTotal.Load())
	writeCounter(&buf, "signatures_deleted_total", "Total signature records deleted", signaturesDeletedTotal.Load())
	writeCounter(&buf, "documents_fully_signed_total", "Total documents that reached all required signatures", documentsFullySignedTotal.Load())
	writeCounter(&buf, "signature_requests_created_total", "Total external signature requests created", signatureRequestsCreatedTotal.Load())
	writeCounter(&buf, "signature_requests_cancelled_total", "Total external signature requests cancelled", signatureRequestsCancelled.Load())
	writeCounter(&buf, "external_signature_submits_total", "Total external signatures accepted", externalSubmitsTotal.Load())
	writeCounter(&buf, "external_signature_submits_rejected_total", "Total external signatures rejected by request state", externalSubmitsRejectedTotal.Load())
	writeCounter(&buf, "notifications_sent_total", "Total notifications delivered", notificationsSentTotal.Load())
	writeCounter(&buf, "notifications_enqueued_total", "Total notifications queued for the worker", notificationsEnqueuedTotal.Load())
	writeCounter(&buf, "notifications_failed_total", "Total notifications dropped after a failure", notificationsFailedTotal.Load())
	writeCounter(&buf, "notification_jobs_received_total", "Total notification queue messages received", notificationJobsReceived.Load())
	writeCounter(&buf, "notification_jobs_dropped_total", "Total notification queue messages dropped as unprocessable", notificationJobsDropped.Load())
	writeHistogram(&buf, "notification_duration_ms", "Notification delivery duration in milliseconds", notificationDuration.Snapshot())
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

// Observe places value in the first bucket whose bound covers it; rendering
// accumulates the buckets.
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
