package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials/insecure"
)

// createExporter builds an OTLP trace exporter for the configured
// protocol. Anything other than an http variant falls back to gRPC.
func createExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "http/protobuf", "http":
		return createHTTPExporter(ctx, cfg)
	default:
		return createGRPCExporter(ctx, cfg)
	}
}

// splitEndpoint strips a scheme prefix from the configured endpoint.
// Both exporter clients expect host:port; the scheme only decides TLS.
func splitEndpoint(endpoint string) (hostPort string, plaintext bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return endpoint[len("https://"):], false
	case strings.HasPrefix(endpoint, "http://"):
		return endpoint[len("http://"):], true
	default:
		return endpoint, false
	}
}

func createGRPCExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	var opts []otlptracegrpc.Option

	hostPort, plaintext := splitEndpoint(cfg.Endpoint)
	if hostPort != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(hostPort))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure || plaintext {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	return otlptracegrpc.New(ctx, opts...)
}

func createHTTPExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	var opts []otlptracehttp.Option

	hostPort, plaintext := splitEndpoint(cfg.Endpoint)
	if hostPort != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(hostPort))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure || plaintext {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, opts...)
}
