package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zahek/todo-platform/internal/auth"
)

const outcomeSuccess = "success"

// authOperations counts session operations by outcome. The outcome is
// "success" or the auth failure kind.
var authOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_operations_total",
		Help: "Total number of session operations by outcome",
	},
	[]string{"operation", "outcome"},
)

func observe(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = string(auth.KindOf(err))
	}
	authOperations.WithLabelValues(operation, outcome).Inc()
}
