package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	clientsCreated   metric.Int64Counter
	clientsDeleted   metric.Int64Counter
	contractsCreated metric.Int64Counter
	contractsEnded   metric.Int64Counter
	costUpdates      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "coverlane"
	}
	meter := provider.Meter(name)

	clientsCreated, err := meter.Int64Counter("coverlane_clients_created_total")
	if err != nil {
		return nil, err
	}
	clientsDeleted, err := meter.Int64Counter("coverlane_clients_deleted_total")
	if err != nil {
		return nil, err
	}
	contractsCreated, err := meter.Int64Counter("coverlane_contracts_created_total")
	if err != nil {
		return nil, err
	}
	contractsEnded, err := meter.Int64Counter("coverlane_contracts_ended_total")
	if err != nil {
		return nil, err
	}
	costUpdates, err := meter.Int64Counter("coverlane_contract_cost_updates_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		clientsCreated:   clientsCreated,
		clientsDeleted:   clientsDeleted,
		contractsCreated: contractsCreated,
		contractsEnded:   contractsEnded,
		costUpdates:      costUpdates,
	}, nil
}

// RecordClientCreated increments client creation counts by client type.
func (m *Metrics) RecordClientCreated(ctx context.Context, clientType string) {
	if m == nil {
		return
	}
	m.clientsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client_type", strings.TrimSpace(clientType)),
	))
}

// RecordClientDeleted increments client deletion counts.
func (m *Metrics) RecordClientDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.clientsDeleted.Add(ctx, 1)
}

// RecordContractCreated increments contract creation counts.
func (m *Metrics) RecordContractCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.contractsCreated.Add(ctx, 1)
}

// RecordContractsEnded adds end-dated contract counts with the triggering reason.
func (m *Metrics) RecordContractsEnded(ctx context.Context, reason string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.contractsEnded.Add(ctx, count, metric.WithAttributes(
		attribute.String("reason", strings.TrimSpace(reason)),
	))
}

// RecordCostUpdate increments contract cost update counts.
func (m *Metrics) RecordCostUpdate(ctx context.Context) {
	if m == nil {
		return
	}
	m.costUpdates.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metrics protocol %q", protocol)
	}
}
