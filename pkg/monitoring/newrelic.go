package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application. With no license key or when
// disabled, every method on the returned app is a no-op.
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr.enabled
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom event helpers

// RecordRideBooked records a new booking
func (nr *NewRelicApp) RecordRideBooked(rideID string, fare float64, paymentMethod string) {
	nr.RecordCustomEvent("RideBooked", map[string]interface{}{
		"ride_id":        rideID,
		"fare":           fare,
		"payment_method": paymentMethod,
	})
}

// RecordRideTransition records a lifecycle status change
func (nr *NewRelicApp) RecordRideTransition(rideID, from, to string) {
	nr.RecordCustomEvent("RideTransition", map[string]interface{}{
		"ride_id": rideID,
		"from":    from,
		"to":      to,
	})
}

// RecordUserSignedUp records a registration
func (nr *NewRelicApp) RecordUserSignedUp(role string) {
	nr.RecordCustomEvent("UserSignedUp", map[string]interface{}{
		"role":      role,
		"timestamp": time.Now().Unix(),
	})
}
