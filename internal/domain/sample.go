package domain

// Sample is one flattened gauge observation ready for the registry.
type Sample struct {
	Key         string
	Unit        string
	Description string
	Value       float64
}

// EndpointSamples flattens an endpoint into gauge samples, kinds in publishing order.
// The latest-point sample is omitted for a series without points; the average is always emitted.
// Kinds missing from the payload produce nothing.
func EndpointSamples(ep Endpoint) []Sample {
	out := make([]Sample, 0, 2*len(ep.Series))
	for _, kind := range Kinds() {
		s, ok := ep.Series[kind]
		if !ok {
			continue
		}
		if v, ok := s.Latest(); ok {
			out = append(out, Sample{
				Key:         GaugeKey(ep.Name, kind, Latest),
				Unit:        kind.Unit(),
				Description: kind.Description(),
				Value:       v,
			})
		}
		out = append(out, Sample{
			Key:         GaugeKey(ep.Name, kind, Average),
			Unit:        kind.Unit(),
			Description: kind.Description(),
			Value:       s.Average,
		})
	}
	return out
}
