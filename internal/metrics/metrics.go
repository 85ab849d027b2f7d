package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codocs",
		Name:      "ws_active_connections",
		Help:      "Current number of open websocket connections",
	})

	openRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codocs",
		Name:      "rooms_open",
		Help:      "Current number of rooms with at least one member",
	})

	joinsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codocs",
		Name:      "room_joins_total",
		Help:      "Total number of accepted room joins",
	})

	joinsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codocs",
		Name:      "room_join_rejections_total",
		Help:      "Total number of rejected room joins",
	})

	editsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codocs",
		Name:      "edits_relayed_total",
		Help:      "Total number of edit events fanned out to rooms",
	})
)

func ConnectionOpened() { activeConnections.Inc() }
func ConnectionClosed() { activeConnections.Dec() }

func SetOpenRooms(n int) { openRooms.Set(float64(n)) }

func JoinAccepted() { joinsAccepted.Inc() }
func JoinRejected() { joinsRejected.Inc() }
func EditRelayed() { editsRelayed.Inc() }

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
