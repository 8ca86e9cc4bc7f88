package servicecontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
)

const (
	monitoredEndpointsPath = "monitored-endpoints"
	defaultHistory         = 30
)

type seriesDTO struct {
	Points  []float64 `json:"points"`
	Average float64   `json:"average"`
}

type endpointDTO struct {
	Metrics             map[string]*seriesDTO `json:"metrics"`
	Name                string                `json:"name"`
	EndpointInstanceIDs []string              `json:"endpointInstanceIds"`
	DisconnectedCount   int                   `json:"disconnectedCount"`
	ConnectedCount      int                   `json:"connectedCount"`
	IsStale             bool                  `json:"isStale"`
}

func (d endpointDTO) toDomain() domain.Endpoint {
	ep := domain.Endpoint{
		Name:              d.Name,
		IsStale:           d.IsStale,
		InstanceIDs:       d.EndpointInstanceIDs,
		ConnectedCount:    d.ConnectedCount,
		DisconnectedCount: d.DisconnectedCount,
		Series:            make(map[domain.MetricKind]domain.Series, len(d.Metrics)),
	}
	for name, s := range d.Metrics {
		if s == nil {
			continue
		}
		kind, ok := kindByName(name)
		if !ok {
			continue
		}
		ep.Series[kind] = domain.Series{Average: s.Average, Points: s.Points}
	}
	return ep
}

func kindByName(name string) (domain.MetricKind, bool) {
	for _, k := range domain.Kinds() {
		if strings.EqualFold(string(k), name) {
			return k, true
		}
	}
	return "", false
}

// MonitoringClient lists monitored endpoints from the ServiceControl monitoring API.
type MonitoringClient struct {
	*baseClient
	history int
}

var _ ports.EndpointSource = (*MonitoringClient)(nil)

// NewMonitoringClient asks for history minutes of samples per series; non-positive means 30.
func NewMonitoringClient(addr string, hc *http.Client, history int) (*MonitoringClient, error) {
	bc, err := newBaseClient(addr, hc)
	if err != nil {
		return nil, err
	}
	if history <= 0 {
		history = defaultHistory
	}
	return &MonitoringClient{baseClient: bc, history: history}, nil
}

// Endpoints issues GET monitored-endpoints?history=N. An empty or null body yields no endpoints.
func (c *MonitoringClient) Endpoints(ctx context.Context) (eps []domain.Endpoint, retErr error) {
	resp, err := c.do(ctx, http.MethodGet, monitoredEndpointsPath, url.Values{"history": {strconv.Itoa(c.history)}})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close response body: %w", cerr)
		}
	}()

	buf := bufferPool.Get()
	defer bufferPool.Put(buf)
	if err := readBody(resp, buf); err != nil {
		return nil, err
	}
	return decodeEndpoints(buf.Bytes())
}

func decodeEndpoints(body []byte) ([]domain.Endpoint, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []domain.Endpoint{}, nil
	}
	var dtos []endpointDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("decode monitored endpoints: %w", err)
	}
	out := make([]domain.Endpoint, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}
