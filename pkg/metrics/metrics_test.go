package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilEsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SaleCreated()
		m.StockExit("sale", 2)
		m.ObserveRequest("/api/sales", 201, time.Millisecond)
	})
}

func TestMetrics_Contadores(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SaleCreated()
	m.SaleCreated()
	m.StockExit("sale", 3)
	m.SaleRejected("INSUFFICIENT_STOCK")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.exits.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesRejected.WithLabelValues("INSUFFICIENT_STOCK")))
}
