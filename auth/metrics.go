// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for token requests.
const (
	outcomeSuccess       = "success"
	outcomeProviderError = "provider_error"
	outcomeError         = "error"
)

// Metrics records the Client's token endpoint requests.
type Metrics struct {
	tokenRequests *prometheus.CounterVec
	tokenLatency  *prometheus.HistogramVec
}

// NewMetrics creates the token request metrics and registers them with reg,
// or with prometheus.DefaultRegisterer when reg is nil. Registering twice
// with the same registerer reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	const op = "auth.NewMetrics"
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinde",
		Subsystem: "auth",
		Name:      "token_requests_total",
		Help:      "Token endpoint requests by grant type and outcome.",
	}, []string{"grant_type", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kinde",
		Subsystem: "auth",
		Name:      "token_request_duration_seconds",
		Help:      "Token endpoint request latency by grant type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"grant_type"})

	var err error
	m := &Metrics{}
	if m.tokenRequests, err = registerCounterVec(reg, requests); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if m.tokenLatency, err = registerHistogramVec(reg, latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return h, nil
}

func (m *Metrics) observe(grant string, d time.Duration, err error) {
	outcome := outcomeSuccess
	switch {
	case errors.Is(err, ErrProviderResponse):
		outcome = outcomeProviderError
	case err != nil:
		outcome = outcomeError
	}
	m.tokenRequests.WithLabelValues(grant, outcome).Inc()
	m.tokenLatency.WithLabelValues(grant).Observe(d.Seconds())
}
