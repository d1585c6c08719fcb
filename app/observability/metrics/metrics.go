package metrics

import (
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SettingsLoadsTotal       metric.Int64Counter
	SettingsSavesTotal       metric.Int64Counter
	SettingsResetsTotal      metric.Int64Counter
	StorageOpDurationSeconds metric.Float64Histogram
	StorageOpErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.SettingsLoadsTotal, err = meter.Int64Counter(
		"settings_loads_total",
		metric.WithDescription("Total number of settings loads"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("settings_loads_total: %w", err)
	}

	m.SettingsSavesTotal, err = meter.Int64Counter(
		"settings_saves_total",
		metric.WithDescription("Total number of settings saves, by result"),
		metric.WithUnit("{save}"),
	)
	if err != nil {
		return nil, fmt.Errorf("settings_saves_total: %w", err)
	}

	m.SettingsResetsTotal, err = meter.Int64Counter(
		"settings_resets_total",
		metric.WithDescription("Total number of settings resets"),
		metric.WithUnit("{reset}"),
	)
	if err != nil {
		return nil, fmt.Errorf("settings_resets_total: %w", err)
	}

	m.StorageOpDurationSeconds, err = meter.Float64Histogram(
		"settings_storage_op_duration_seconds",
		metric.WithDescription("Duration of settings storage operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("settings_storage_op_duration_seconds: %w", err)
	}

	m.StorageOpErrorsTotal, err = meter.Int64Counter(
		"settings_storage_op_errors_total",
		metric.WithDescription("Total number of failed settings storage operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("settings_storage_op_errors_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global instruments once, from the globally
// configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("RotinaAI"))
		if err != nil {
			log.Fatalf("Metrics: Failed to create instruments: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics. Panics if InitAppMetrics was not called.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
