package ginserver

import (
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/services/gauges"
	"github.com/vshulcz/scbridge/internal/services/health"
)

// GaugeView is the JSON shape of one registered gauge.
type GaugeView struct {
	Key         string  `json:"key"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// Handler exposes the registry, the cycle health and the exporter scrape endpoint.
type Handler struct {
	registry *gauges.Registry
	tracker  *health.Tracker
	metrics  http.Handler
}

// NewHandler wires the registry and health tracker into gin handlers.
// A nil metrics handler disables /metrics with 404.
func NewHandler(reg *gauges.Registry, tracker *health.Tracker, metrics http.Handler) *Handler {
	return &Handler{registry: reg, tracker: tracker, metrics: metrics}
}

func view(e *gauges.Entry) GaugeView {
	return GaugeView{Key: e.Key(), Unit: e.Unit(), Description: e.Description(), Value: e.Value()}
}

// Ping handles `GET /ping`.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Health handles `GET /healthz`: 200 once the latest cycle succeeded, 503 otherwise.
func (h *Handler) Health(c *gin.Context) {
	if h.tracker == nil {
		c.JSON(http.StatusServiceUnavailable, health.Status{})
		return
	}
	st := h.tracker.Status()
	code := http.StatusOK
	if !st.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}

// Metrics handles `GET /metrics` with the exporter's scrape handler.
func (h *Handler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

// ListGauges handles `GET /gauges` and returns every gauge ordered by key.
func (h *Handler) ListGauges(c *gin.Context) {
	entries := h.registry.Entries()
	out := make([]GaugeView, 0, len(entries))
	for _, e := range entries {
		out = append(out, view(e))
	}
	c.JSON(http.StatusOK, out)
}

// GetGauge handles `GET /gauges/:key`; the key is matched case-insensitively.
func (h *Handler) GetGauge(c *gin.Context) {
	key := domain.NormalizeKey(c.Param("key"))
	if key == "" {
		c.String(http.StatusNotFound, "not found")
		return
	}
	e, ok := h.registry.Lookup(key)
	if !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, view(e))
}

// Index renders a basic HTML page with the current gauge values.
func (h *Handler) Index(c *gin.Context) {
	entries := h.registry.Entries()

	var sb strings.Builder
	sb.WriteString("<!doctype html><html><head><meta charset='utf-8'><title>servicecontrol bridge</title>")
	sb.WriteString("<style>body{font-family:system-ui,Arial,sans-serif}table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:6px 10px}</style>")
	sb.WriteString("</head><body>")
	sb.WriteString("<h1>Gauges</h1>")

	sb.WriteString("<table><tr><th>Name</th><th>Value</th><th>Unit</th></tr>")
	for _, e := range entries {
		sb.WriteString("<tr><td>")
		sb.WriteString(html.EscapeString(e.Key()))
		sb.WriteString("</td><td>")
		sb.WriteString(strconv.FormatFloat(e.Value(), 'f', -1, 64))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(e.Unit()))
		sb.WriteString("</td></tr>")
	}
	sb.WriteString("</table>")

	sb.WriteString("</body></html>")

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(sb.String()))
}
