package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "warera"
	// Subsystem for economy engine metrics
	subsystem = "economy"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalMarketCollector is the singleton market metrics collector
	// Set by SetGlobalMarketCollector() when metrics are enabled
	globalMarketCollector MarketMetricsRecorder

	// globalEconomyCollector is the singleton economy metrics collector
	// Set by SetGlobalEconomyCollector() when metrics are enabled
	globalEconomyCollector EconomyMetricsRecorder
)

// MarketMetricsRecorder defines the interface for recording price cache and scrape events
// This interface is used by application code to record metrics
type MarketMetricsRecorder interface {
	RecordCacheLookup(outcome string)
	RecordScrape(itemsScraped int, itemsFailed int, duration time.Duration, err error)
}

// EconomyMetricsRecorder defines the interface for recording computed economics
type EconomyMetricsRecorder interface {
	RecordRanking(itemID string, netProfit float64, margin float64)
	RecordNetworkReport(mode string, facilities int, grandTotalProfit float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalMarketCollector sets the global market metrics collector
func SetGlobalMarketCollector(collector MarketMetricsRecorder) {
	globalMarketCollector = collector
}

// SetGlobalEconomyCollector sets the global economy metrics collector
func SetGlobalEconomyCollector(collector EconomyMetricsRecorder) {
	globalEconomyCollector = collector
}

// RecordCacheLookup records how a price request was served (fresh, cached, stale, fallback)
func RecordCacheLookup(outcome string) {
	if globalMarketCollector != nil {
		globalMarketCollector.RecordCacheLookup(outcome)
	}
}

// RecordScrape records the outcome of one full price scrape
func RecordScrape(itemsScraped int, itemsFailed int, duration time.Duration, err error) {
	if globalMarketCollector != nil {
		globalMarketCollector.RecordScrape(itemsScraped, itemsFailed, duration, err)
	}
}

// RecordRanking records the profitability of one ranked item
func RecordRanking(itemID string, netProfit float64, margin float64) {
	if globalEconomyCollector != nil {
		globalEconomyCollector.RecordRanking(itemID, netProfit, margin)
	}
}

// RecordNetworkReport records a reconciled network report
func RecordNetworkReport(mode string, facilities int, grandTotalProfit float64) {
	if globalEconomyCollector != nil {
		globalEconomyCollector.RecordNetworkReport(mode, facilities, grandTotalProfit)
	}
}
