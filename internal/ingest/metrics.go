package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var feedPollCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_feed_polls",
	Help: "Number of feed listing calls",
}, []string{"subreddit", "kind"})

var feedErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_feed_poll_errors",
	Help: "Number of failed feed listing calls",
}, []string{"subreddit", "kind"})

var feedFatalCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_feed_fatal",
	Help: "Number of feeds abandoned after exhausting their retry budget",
}, []string{"subreddit", "kind"})

var candidateCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tubeguard_candidates_emitted",
	Help: "Number of candidate posts emitted to the coordinator",
}, []string{"subreddit", "kind"})
