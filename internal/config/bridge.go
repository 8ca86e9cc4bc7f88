package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vshulcz/scbridge/internal/domain"
)

const (
	defaultMeterName          = "servicecontrol"
	defaultCollectionInterval = "30s"
	defaultMonitoringHistory  = 30
	defaultRequestTimeout     = "10s"
	defaultListenAddr         = ":9464"
	defaultLogLevel           = "info"
	defaultOTLPInterval       = "60s"
	defaultOTelServiceName    = "servicecontrol-bridge"
)

// Version is reported as the meter and service version; set with -ldflags.
var Version = "dev"

type OTLPConfig struct {
	Endpoint         string
	ServiceName      string
	ServiceVersion   string
	ServiceNamespace string
	InstanceID       string
	ExportInterval   time.Duration
}

// Enabled reports whether an OTLP push endpoint was configured.
func (c OTLPConfig) Enabled() bool {
	return c.Endpoint != ""
}

type BridgeConfig struct {
	ServiceControlURL  string
	MonitoringURL      string
	MeterName          string
	Address            string
	LogLevel           string
	CollectionInterval time.Duration
	RequestTimeout     time.Duration
	MonitoringHistory  int
	OTLP               OTLPConfig
}

// fileConfig mirrors the optional YAML file given with -c or CONFIG.
type fileConfig struct {
	ServiceControlURL  string `yaml:"service_control_api_url"`
	MonitoringURL      string `yaml:"service_control_monitoring_api_url"`
	MeterName          string `yaml:"meter_name"`
	CollectionInterval string `yaml:"collection_interval"`
	MonitoringHistory  int    `yaml:"monitoring_history"`
	RequestTimeout     string `yaml:"request_timeout"`
	Address            string `yaml:"address"`
	LogLevel           string `yaml:"log_level"`
	OTLP               struct {
		Endpoint         string `yaml:"endpoint"`
		ExportInterval   string `yaml:"export_interval"`
		ServiceName      string `yaml:"service_name"`
		ServiceVersion   string `yaml:"service_version"`
		ServiceNamespace string `yaml:"service_namespace"`
		InstanceID       string `yaml:"instance_id"`
	} `yaml:"otlp"`
}

// ENV > CLI > YAML file > defaults
func LoadBridgeConfig(args []string, out io.Writer) (BridgeConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		apiOpt, monOpt, meterOpt string
		ivalOpt, timeoutOpt      string
		addrOpt, levelOpt        string
		otlpOpt, fileOpt         string
		historyOpt               int
	)

	fs.StringVar(&apiOpt, "s", "", "ServiceControl errors API base URL (required)")
	fs.StringVar(&monOpt, "m", "", "ServiceControl monitoring API base URL (required)")
	fs.StringVar(&meterOpt, "n", "", fmt.Sprintf("meter name, default: %s", defaultMeterName))
	fs.StringVar(&ivalOpt, "i", "", fmt.Sprintf("collection interval (seconds, Go duration or hh:mm:ss), default: %s", defaultCollectionInterval))
	fs.IntVar(&historyOpt, "history", 0, fmt.Sprintf("monitoring history window in minutes, default: %d", defaultMonitoringHistory))
	fs.StringVar(&timeoutOpt, "t", "", fmt.Sprintf("upstream request timeout, default: %s", defaultRequestTimeout))
	fs.StringVar(&addrOpt, "a", "", fmt.Sprintf("HTTP listen address, default: %s", defaultListenAddr))
	fs.StringVar(&levelOpt, "log-level", "", fmt.Sprintf("log level, default: %s", defaultLogLevel))
	fs.StringVar(&otlpOpt, "otlp", "", "OTLP gRPC endpoint URL, disabled when empty")
	fs.StringVar(&fileOpt, "c", "", "path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return BridgeConfig{}, err
	}

	var fc fileConfig
	if path := FromEnvOrFlag("CONFIG", fileOpt, ""); path != "" {
		loaded, err := readConfigFile(path)
		if err != nil {
			return BridgeConfig{}, err
		}
		fc = loaded
	}

	cfg := BridgeConfig{
		ServiceControlURL: FromEnvOrFlag("SERVICE_CONTROL_API_URL", apiOpt, fc.ServiceControlURL),
		MonitoringURL:     FromEnvOrFlag("SERVICE_CONTROL_MONITORING_API_URL", monOpt, fc.MonitoringURL),
		MeterName:         FromEnvOrFlag("METER_NAME", meterOpt, orDefault(fc.MeterName, defaultMeterName)),
		Address:           FromEnvOrFlag("ADDRESS", addrOpt, orDefault(fc.Address, defaultListenAddr)),
		LogLevel:          FromEnvOrFlag("LOG_LEVEL", levelOpt, orDefault(fc.LogLevel, defaultLogLevel)),
		MonitoringHistory: FromEnvOrFlagInt("MONITORING_HISTORY", historyOpt, orDefaultInt(fc.MonitoringHistory, defaultMonitoringHistory), 1),
	}

	var err error
	if cfg.ServiceControlURL, err = requireURL("SERVICE_CONTROL_API_URL", cfg.ServiceControlURL); err != nil {
		return BridgeConfig{}, err
	}
	if cfg.MonitoringURL, err = requireURL("SERVICE_CONTROL_MONITORING_API_URL", cfg.MonitoringURL); err != nil {
		return BridgeConfig{}, err
	}

	cfg.CollectionInterval, err = FromEnvOrFlagDuration("COLLECTION_INTERVAL", ivalOpt,
		orDefault(fc.CollectionInterval, defaultCollectionInterval))
	if err != nil {
		return BridgeConfig{}, err
	}
	cfg.RequestTimeout, err = FromEnvOrFlagDuration("REQUEST_TIMEOUT", timeoutOpt,
		orDefault(fc.RequestTimeout, defaultRequestTimeout))
	if err != nil {
		return BridgeConfig{}, err
	}

	cfg.Address = normalizeListenAddr(cfg.Address)
	if _, port, err := net.SplitHostPort(cfg.Address); err != nil || port == "" {
		return BridgeConfig{}, fmt.Errorf("%w: invalid listen address: %q", domain.ErrInvalidArgument, cfg.Address)
	}

	cfg.OTLP = OTLPConfig{
		Endpoint:         FromEnvOrFlag("OTEL_EXPORTER_OTLP_ENDPOINT", otlpOpt, fc.OTLP.Endpoint),
		ServiceName:      FromEnvOrFlag("OTEL_SERVICE_NAME", "", orDefault(fc.OTLP.ServiceName, defaultOTelServiceName)),
		ServiceVersion:   FromEnvOrFlag("OTEL_SERVICE_VERSION", "", orDefault(fc.OTLP.ServiceVersion, Version)),
		ServiceNamespace: FromEnvOrFlag("OTEL_SERVICE_NAMESPACE", "", fc.OTLP.ServiceNamespace),
		InstanceID:       FromEnvOrFlag("OTEL_SERVICE_INSTANCE_ID", "", fc.OTLP.InstanceID),
	}
	if cfg.OTLP.InstanceID == "" {
		cfg.OTLP.InstanceID = defaultInstanceID()
	}
	cfg.OTLP.ExportInterval, err = FromEnvOrFlagDuration("OTEL_METRIC_EXPORT_INTERVAL", "",
		orDefault(fc.OTLP.ExportInterval, defaultOTLPInterval))
	if err != nil {
		return BridgeConfig{}, err
	}

	return cfg, nil
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("%w: parse config file %s: %v", domain.ErrInvalidArgument, path, err)
	}
	return fc, nil
}

func requireURL(key, v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, key)
	}
	v = normalizeAddressURL(v)
	u, err := url.ParseRequestURI(v)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid %s: %q", domain.ErrInvalidArgument, key, v)
	}
	return v, nil
}

func normalizeAddressURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if strings.HasPrefix(s, ":") {
		return "http://localhost" + s
	}
	return "http://" + s
}

func normalizeListenAddr(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return u.Host
		}
	}
	if !strings.Contains(s, ":") {
		return ":" + s
	}
	return s
}

func defaultInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return uuid.NewString()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func orDefaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
