package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.StoreOperations.WithLabelValues("upsert", "success").Inc()
	m.AuditRequests.WithLabelValues("failed").Add(2)
	m.StoredReports.Set(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("upsert", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditRequests.WithLabelValues("failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.StoredReports))

	// A second set must not collide with the first.
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
