package monitor

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LettersPosted counts letters added to mailboxes.
	LettersPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "mailbox",
		Name:      "posted_total",
		Help:      "Letters posted",
	})

	// LettersCollected counts letters taken by receivers.
	LettersCollected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "mailbox",
		Name:      "collected_total",
		Help:      "Letters collected",
	})

	// AgentsStarted counts agents by role.
	AgentsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "crew",
		Name:      "agents_started_total",
		Help:      "Agents started",
	}, []string{"role"})

	// AgentsFinished counts agents by role and result (TRUE,
	// FALSE, MAYBE, or fault).
	AgentsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "crew",
		Name:      "agents_finished_total",
		Help:      "Agents finished",
	}, []string{"role", "result"})

	// Polls counts pauses after Maybe.
	Polls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "crew",
		Name:      "polls_total",
		Help:      "Evaluations that returned MAYBE and will be retried",
	})

	// Faults counts execution faults by type.
	Faults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lcc",
		Subsystem: "crew",
		Name:      "faults_total",
		Help:      "Execution faults",
	}, []string{"fault"})
)

// FaultName is a short name for the error's type, suitable for a
// label.
func FaultName(err error) string {
	s := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(s, "."); 0 <= i {
		s = s[i+1:]
	}
	return s
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
