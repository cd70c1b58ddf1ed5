package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var processDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "tubeguard_candidate_duration_sec",
	Help: "Total duration of candidate processing",
}, []string{"kind"})

var outcomeCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_outcomes",
	Help: "Terminal outcomes by state and reason",
}, []string{"state", "reason"})

var removalCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_removals",
	Help: "Number of posts removed",
}, []string{"subreddit"})

var historyFetchCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tubeguard_history_fetches",
	Help: "Number of user history reads (API calls)",
})

var historyFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tubeguard_history_fetch_errors",
	Help: "Number of failed user history reads",
})
