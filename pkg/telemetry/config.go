// Package telemetry wires OpenTelemetry tracing around fold runs. It is
// configured entirely through the standard OTEL_* environment variables
// and stays inert unless OTEL_ENABLED is set.
package telemetry

import (
	"os"
	"strings"
)

// Config mirrors the OTEL_* environment variables this tool honors.
type Config struct {
	Enabled        bool              // OTEL_ENABLED
	ServiceName    string            // OTEL_SERVICE_NAME, default "perf-fold"
	ServiceVersion string            // OTEL_SERVICE_VERSION, default "unknown"
	Endpoint       string            // OTEL_EXPORTER_OTLP_ENDPOINT
	Protocol       string            // OTEL_EXPORTER_OTLP_PROTOCOL, "grpc" or "http/protobuf"
	Headers        map[string]string // OTEL_EXPORTER_OTLP_HEADERS, "k1=v1,k2=v2"
	Insecure       bool              // OTEL_EXPORTER_OTLP_INSECURE
	Sampler        string            // OTEL_TRACES_SAMPLER, default always_on
	SamplerArg     string            // OTEL_TRACES_SAMPLER_ARG, ratio for traceidratio
	ResourceAttrs  map[string]string // OTEL_RESOURCE_ATTRIBUTES, "k1=v1,k2=v2"
}

// LoadFromEnv reads the environment into a Config. Unset variables take
// their documented defaults.
func LoadFromEnv() *Config {
	return &Config{
		Enabled:        envBool("OTEL_ENABLED"),
		ServiceName:    envOr("OTEL_SERVICE_NAME", "perf-fold"),
		ServiceVersion: envOr("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Headers:        parseKeyValuePairs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE"),
		Sampler:        os.Getenv("OTEL_TRACES_SAMPLER"),
		SamplerArg:     os.Getenv("OTEL_TRACES_SAMPLER_ARG"),
		ResourceAttrs:  parseKeyValuePairs(os.Getenv("OTEL_RESOURCE_ATTRIBUTES")),
	}
}

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseKeyValuePairs turns "k1=v1,k2=v2" into a map. Values may contain
// '='; pairs without a key are dropped.
func parseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(pair[:idx])
		if key == "" {
			continue
		}
		result[key] = strings.TrimSpace(pair[idx+1:])
	}
	return result
}
