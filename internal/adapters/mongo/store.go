package mongo

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// storeErr wraps a driver error and marks it so callers can test for
// domain.ErrStoreUnavailable without importing the driver.
func storeErr(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), domain.ErrStoreUnavailable)
}

func storeTimer(op string) *prometheus.Timer {
	return prometheus.NewTimer(observability.StoreOpDuration.WithLabelValues(op))
}
