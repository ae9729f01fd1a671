package metrics

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// Query outcomes
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeCyclicRecipe = "cyclic_recipe"
	OutcomeTokenExpired = "token_expired"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

// QueryMetricsCollector times every request sent through the mediator
type QueryMetricsCollector struct {
	queryDuration *prometheus.HistogramVec
	queriesTotal  *prometheus.CounterVec
}

// NewQueryMetricsCollector creates a new query metrics collector
func NewQueryMetricsCollector() *QueryMetricsCollector {
	return &QueryMetricsCollector{
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "query_duration_seconds",
				Help:      "Time spent handling a query, including any price refresh it triggered",
				// most queries are pure computation; the top buckets catch scrapes
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2, 10, 60},
			},
			[]string{"query"},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queries_total",
				Help:      "Queries handled by type and outcome",
			},
			[]string{"query", "outcome"},
		),
	}
}

// Register registers the query metrics with the Prometheus registry
func (c *QueryMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.queryDuration, c.queriesTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one handled query
func (c *QueryMetricsCollector) Observe(query string, duration time.Duration, err error) {
	c.queryDuration.WithLabelValues(query).Observe(duration.Seconds())
	c.queriesTotal.WithLabelValues(query, Outcome(err)).Inc()
}

// QueryMetricsMiddleware records duration and outcome of each request.
// A nil collector makes it a pass-through.
func QueryMetricsMiddleware(collector *QueryMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.Observe(queryName(request), time.Since(start), err)
		return response, err
	}
}

// Outcome maps a handler error to a bounded label value
func Outcome(err error) string {
	var (
		validation *shared.ValidationError
		notFound   *shared.NotFoundError
		cyclic     *recipe.CyclicRecipeError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &validation), errors.Is(err, costing.ErrInvalidSalary):
		return OutcomeInvalid
	case errors.As(err, &notFound):
		return OutcomeNotFound
	case errors.As(err, &cyclic):
		return OutcomeCyclicRecipe
	case errors.Is(err, market.ErrTokenExpired):
		return OutcomeTokenExpired
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	}
	return OutcomeError
}

// queryName is the request's type name without package or pointer
func queryName(request mediator.Request) string {
	t := reflect.TypeOf(request)
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "unknown"
	}
	return t.Name()
}
