package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScrapeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_requests_total",
			Help: "Platform scrape attempts by outcome",
		},
		[]string{"platform", "status"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of platform scrape calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"platform"},
	)

	TicketsScraped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_scraped_total",
			Help: "Raw listings returned per platform",
		},
		[]string{"platform"},
	)

	AlertsChecked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_checked_total",
			Help: "Alerts processed by the alert engine",
		},
	)

	MatchesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_matches_found_total",
			Help: "Qualifying alert matches emitted",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notification dispatch results by channel",
		},
		[]string{"channel", "status"},
	)

	PurchasesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase lifecycle transitions",
		},
		[]string{"status"},
	)
)
