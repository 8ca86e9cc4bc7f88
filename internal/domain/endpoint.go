package domain

// Series is one metric kind's measurement: a rolling average plus recent points, most recent last.
type Series struct {
	Points  []float64
	Average float64
}

// Latest returns the most recent point, or false when the series has no points.
func (s Series) Latest() (float64, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	return s.Points[len(s.Points)-1], true
}

// Endpoint is a monitored endpoint as reported by the monitoring API at a point in time.
type Endpoint struct {
	Series            map[MetricKind]Series
	Name              string
	InstanceIDs       []string
	ConnectedCount    int
	DisconnectedCount int
	IsStale           bool
}
