package misc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Getenv returns the trimmed value of key, or def when it is unset or blank.
func Getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ParseDuration accepts whole seconds ("30"), Go syntax ("1m30s") and clock
// syntax ("00:00:30", "1.02:00:00" with a leading day count).
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if strings.Count(v, ":") == 2 {
		return parseClock(v)
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}

func parseClock(v string) (time.Duration, error) {
	parts := strings.Split(v, ":")
	var days int64
	hours := parts[0]
	if i := strings.IndexByte(hours, '.'); i >= 0 {
		d, err := strconv.ParseInt(hours[:i], 10, 64)
		if err != nil || d < 0 {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		days, hours = d, hours[i+1:]
	}
	h, err := strconv.ParseInt(hours, 10, 64)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	d := time.Duration(days)*24*time.Hour +
		time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	return d, nil
}
