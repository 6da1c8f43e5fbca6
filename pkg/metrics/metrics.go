// Package metrics expone contadores Prometheus del motor de inventario y ventas.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas, p. ej. en tests).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ventas"

// Metrics agrupa los colectores del servicio.
type Metrics struct {
	exits             *prometheus.CounterVec
	insufficientStock prometheus.Counter
	salesCreated      prometheus.Counter
	salesRejected     *prometheus.CounterVec
	salesCompleted    prometheus.Counter
	payments          prometheus.Counter
	requests          *prometheus.CounterVec
	latencyMS         *prometheus.HistogramVec
}

// New crea y registra los colectores en reg (usar prometheus.DefaultRegisterer en main).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_exits_total",
			Help:      "Salidas de stock registradas, por tipo (sale, manual).",
		}, []string{"kind"}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_stock_total",
			Help:      "Descuentos rechazados por stock insuficiente.",
		}),
		salesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_created_total",
			Help:      "Ventas confirmadas.",
		}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_rejected_total",
			Help:      "Ventas rechazadas, por código de error.",
		}, []string{"code"}),
		salesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_completed_total",
			Help:      "Ventas que pasaron a COMPLETED.",
		}),
		payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Pagos registrados.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP.",
		}, []string{"route", "status"}),
		latencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "Latencia HTTP en milisegundos.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.exits, m.insufficientStock, m.salesCreated, m.salesRejected,
			m.salesCompleted, m.payments, m.requests, m.latencyMS)
	}
	return m
}

// Handler devuelve el handler HTTP de exposición (/metrics).
func Handler() http.Handler {
	return promhttp.Handler()
}

// StockExit cuenta una salida confirmada.
func (m *Metrics) StockExit(kind string, n int) {
	if m == nil {
		return
	}
	m.exits.WithLabelValues(kind).Add(float64(n))
}

// InsufficientStock cuenta un descuento rechazado.
func (m *Metrics) InsufficientStock() {
	if m == nil {
		return
	}
	m.insufficientStock.Inc()
}

// SaleCreated cuenta una venta confirmada.
func (m *Metrics) SaleCreated() {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
}

// SaleRejected cuenta una venta rechazada con el código dado.
func (m *Metrics) SaleRejected(code string) {
	if m == nil {
		return
	}
	m.salesRejected.WithLabelValues(code).Inc()
}

// SaleCompleted cuenta una transición PENDING -> COMPLETED.
func (m *Metrics) SaleCompleted() {
	if m == nil {
		return
	}
	m.salesCompleted.Inc()
}

// Payment cuenta un pago registrado.
func (m *Metrics) Payment() {
	if m == nil {
		return
	}
	m.payments.Inc()
}

// ObserveRequest registra una petición HTTP terminada.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.latencyMS.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
}
