// Package metrics defines all custom Prometheus metrics for the commonfund
// treasury API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register themselves with the default registry via
// promauto at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "treasury"

// ── Treasury metrics ──────────────────────────────────────────────────────────

// ContributionsTotal counts successful contributions.
var ContributionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contributions_total",
		Help:      "Total number of successful contributions.",
	},
)

// PoolBalance tracks the current custodied pool balance in base units.
var PoolBalance = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_balance_units",
		Help:      "Current pool balance in base units.",
	},
)

// ── Governance metrics ────────────────────────────────────────────────────────

// ProposalsCreatedTotal counts created proposals.
var ProposalsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_created_total",
		Help:      "Total number of spending proposals created.",
	},
)

// VotesCastTotal counts recorded votes.
// Label:
//   - choice: "up" or "down"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes recorded, by choice.",
	},
	[]string{"choice"},
)

// VoteRejectionsTotal counts vote attempts that were refused.
// Label:
//   - reason: "unauthorized", "not_found", "already_voted", "closed"
var VoteRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vote_rejections_total",
		Help:      "Total number of rejected vote attempts, by reason.",
	},
	[]string{"reason"},
)

// ── Payout metrics ────────────────────────────────────────────────────────────

// PayoutsTotal counts payout attempts that reached the transfer primitive.
// Label:
//   - result: "success" or "transfer_failed"
var PayoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payouts_total",
		Help:      "Total number of payout executions, by result.",
	},
	[]string{"result"},
)

// TransferDuration measures how long the external transfer primitive takes.
var TransferDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transfer_duration_seconds",
		Help:      "Duration of external beneficiary transfers.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
