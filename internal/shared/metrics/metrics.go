package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	draftSyncRunsTotal      atomic.Uint64
	draftSyncDocumentsTotal atomic.Uint64
	draftSyncFailuresTotal  atomic.Uint64

	resumeSavesTotal = newLabeledCounter("store")
	shareViewsTotal  = newLabeledCounter("outcome")

	draftSyncDuration = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncResumeSaved counts a successful save against store ("local" or "remote").
func IncResumeSaved(store string) {
	resumeSavesTotal.Inc(store)
}

// IncDraftSyncRun counts one synchronization run.
func IncDraftSyncRun() {
	draftSyncRunsTotal.Add(1)
}

// AddDraftSyncDocuments counts drafts pushed to the remote store.
func AddDraftSyncDocuments(n int) {
	if n > 0 {
		draftSyncDocumentsTotal.Add(uint64(n))
	}
}

// AddDraftSyncFailures counts drafts that failed to sync.
func AddDraftSyncFailures(n int) {
	if n > 0 {
		draftSyncFailuresTotal.Add(uint64(n))
	}
}

// ObserveDraftSyncDurationMs records a sync run duration in milliseconds.
func ObserveDraftSyncDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	draftSyncDuration.Observe(value)
}

// IncShareView counts a public view by outcome ("ok", "not_found", "expired", "error").
func IncShareView(outcome string) {
	shareViewsTotal.Inc(outcome)
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
	writeLabeledCounter(&buf, "resume_saves_total", "Total resume saves by store", resumeSavesTotal)
	writeCounter(&buf, "draft_sync_runs_total", "Total draft synchronization runs", draftSyncRunsTotal.Load())
	writeCounter(&buf, "draft_sync_documents_total", "Total drafts pushed to the remote store", draftSyncDocumentsTotal.Load())
	writeCounter(&buf, "draft_sync_failures_total", "Total drafts that failed to sync", draftSyncFailuresTotal.Load())
	writeHistogram(&buf, "draft_sync_duration_ms", "Draft synchronization duration in milliseconds", draftSyncDuration.Snapshot())
	writeLabeledCounter(&buf, "share_views_total", "Total public share views by outcome", shareViewsTotal)
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	label  string
	values map[string]uint64
}

func newLabeledCounter(label string) *labeledCounter {
	return &labeledCounter{label: label, values: make(map[string]uint64)}
}

func (c *labeledCounter) Inc(value string) {
	c.mu.Lock()
	c.values[value]++
	c.mu.Unlock()
}

func (c *labeledCounter) Get(value string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[value]
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
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

func writeLabeledCounter(buf *bytes.Buffer, name, help string, c *labeledCounter) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	c.mu.Lock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, c.label, k, c.values[k])
	}
	c.mu.Unlock()
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
