// Package metrics defines and registers all custom Prometheus metrics for
// the review platform API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reviewdeck"

// ── Identity metrics ─────────────────────────────────────────────────────────

// SignupsTotal counts registration attempts.
// Label:
//   - result: "ok", "invalid", "conflict", "mail_failed"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by outcome.",
	},
	[]string{"result"},
)

// TokenExchangesTotal counts confirmation-code-for-token exchanges.
// Label:
//   - result: "issued", "invalid_code", "unknown_user"
var TokenExchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Total number of token exchange attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Authorization metrics ────────────────────────────────────────────────────

// AuthzDenialsTotal counts policy denials.
// Labels:
//   - class: resource class ("catalog", "users", "self", "contribution")
//   - phase: "request" or "object"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of authorization denials, by resource class and decision phase.",
	},
	[]string{"class", "phase"},
)

// ── Review metrics ───────────────────────────────────────────────────────────

// ReviewsCreatedTotal counts successfully created reviews.
var ReviewsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews created.",
	},
)

// ReviewConflictsTotal counts rejected duplicate reviews, whether caught by
// the pre-check or by the store's unique index.
var ReviewConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_conflicts_total",
		Help:      "Total number of review creations rejected as duplicates.",
	},
)

// ── Mail metrics ─────────────────────────────────────────────────────────────

// MailDispatchTotal counts confirmation-mail dispatch attempts.
// Label:
//   - result: "sent" or "failed"
var MailDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_dispatch_total",
		Help:      "Total number of confirmation mail dispatch attempts, by result.",
	},
	[]string{"result"},
)
