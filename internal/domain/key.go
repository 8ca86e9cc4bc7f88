package domain

import "strings"

// Variant distinguishes the two gauges published per endpoint and kind.
type Variant int

const (
	// Latest is backed by the last point of a series.
	Latest Variant = iota
	// Average is backed by the series' rolling average.
	Average
)

const (
	averageSuffix     = ".avg"
	failedMessagesKey = ".failedmessages"

	// FailedMessagesUnit and FailedMessagesDescription describe the scalar failed-message gauge.
	FailedMessagesUnit        = "Messages"
	FailedMessagesDescription = "Number of failed messages."
)

// NormalizeKey lower-cases a gauge key so upstream casing never yields duplicate instruments.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// GaugeKey builds the normalized `<endpoint>.<kind>[.avg]` key.
func GaugeKey(endpoint string, kind MetricKind, v Variant) string {
	k := endpoint + "." + string(kind)
	if v == Average {
		k += averageSuffix
	}
	return NormalizeKey(k)
}

// FailedMessagesKey builds the `<meter>.failedmessages` key.
func FailedMessagesKey(meterName string) string {
	return NormalizeKey(meterName + failedMessagesKey)
}
