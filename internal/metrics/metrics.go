// Package metrics provides Prometheus metrics for notification configuration and delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConfigureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_configure_total",
			Help: "Total number of notification configuration commands by outcome",
		},
		[]string{"event", "outcome"},
	)

	MediaDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_media_downloads_total",
			Help: "Total number of uploaded media downloads by outcome",
		},
		[]string{"outcome"},
	)

	MediaBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_media_bytes_total",
			Help: "Total bytes written to user content storage",
		},
	)

	FilesRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_files_removed_total",
			Help: "Total number of user content files removed",
		},
		[]string{"reason"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_notifications_sent_total",
			Help: "Total number of member join/leave notifications delivered",
		},
		[]string{"event", "outcome"},
	)
)

// Handler returns the HTTP handler exposing the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
