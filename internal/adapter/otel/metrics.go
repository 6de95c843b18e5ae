package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "openlease"

// Metrics holds all OpenLease metric instruments.
type Metrics struct {
	ApplicationsSubmitted metric.Int64Counter
	ApplicationsApproved  metric.Int64Counter
	ApplicationsRejected  metric.Int64Counter
	MaintenanceReported   metric.Int64Counter
	MaintenanceCompleted  metric.Int64Counter
	TransitionDuration    metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ApplicationsSubmitted, err = meter.Int64Counter("openlease.applications.submitted",
		metric.WithDescription("Number of rental applications submitted"))
	if err != nil {
		return nil, err
	}

	m.ApplicationsApproved, err = meter.Int64Counter("openlease.applications.approved",
		metric.WithDescription("Number of rental applications approved"))
	if err != nil {
		return nil, err
	}

	m.ApplicationsRejected, err = meter.Int64Counter("openlease.applications.rejected",
		metric.WithDescription("Number of rental applications rejected, including cascade rejections"))
	if err != nil {
		return nil, err
	}

	m.MaintenanceReported, err = meter.Int64Counter("openlease.maintenance.reported",
		metric.WithDescription("Number of maintenance requests reported"))
	if err != nil {
		return nil, err
	}

	m.MaintenanceCompleted, err = meter.Int64Counter("openlease.maintenance.completed",
		metric.WithDescription("Number of maintenance requests completed"))
	if err != nil {
		return nil, err
	}

	m.TransitionDuration, err = meter.Float64Histogram("openlease.transition.duration_seconds",
		metric.WithDescription("Lifecycle transition duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
