// Package backends installs the metrics backend a binary was configured
// with. It lives outside package metrics because the backends import it.
package backends

import (
	"fmt"
	"log"

	"transitsql/internal/config"
	"transitsql/internal/metrics"
	"transitsql/internal/metrics/datadog"
	"transitsql/internal/metrics/prompush"
)

// Install builds the backend named by cfg.Backend and makes it the global
// one. The returned flush pushes or closes it and must be called once the
// run is over; with no backend it does nothing.
func Install(cfg config.Metrics) (flush func(), err error) {
	var b metrics.Backend
	switch cfg.Backend {
	case "", "none":
		return func() {}, nil
	case "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
		if err == nil {
			log.Printf("metrics: backend=prometheus url=%s job=%s", cfg.PushgatewayURL, cfg.Job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  cfg.Namespace,
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err == nil {
			log.Printf("metrics: backend=datadog addr=%s", cfg.DatadogAddr)
		}
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}, nil
}
