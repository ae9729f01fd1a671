package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EconomyMetricsCollector exposes the latest computed economics
type EconomyMetricsCollector struct {
	itemNetProfit     *prometheus.GaugeVec
	itemMargin        *prometheus.GaugeVec
	networkReports    *prometheus.CounterVec
	networkProfit     *prometheus.GaugeVec
	networkFacilities *prometheus.GaugeVec
}

// NewEconomyMetricsCollector creates a new economy metrics collector
func NewEconomyMetricsCollector() *EconomyMetricsCollector {
	return &EconomyMetricsCollector{
		itemNetProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "item_net_profit",
				Help:      "Net profit per unit from the latest ranking",
			},
			[]string{"item"},
		),
		itemMargin: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "item_profit_margin_percent",
				Help:      "Profit margin from the latest ranking",
			},
			[]string{"item"},
		),
		networkReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_reports_total",
				Help:      "Network reconciliations by mode",
			},
			[]string{"mode"},
		),
		networkProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_grand_total_profit",
				Help:      "Grand total daily profit of the latest reconciled network",
			},
			[]string{"mode"},
		),
		networkFacilities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_facilities",
				Help:      "Facilities in the latest reconciled network",
			},
			[]string{"mode"},
		),
	}
}

// Register registers all economy metrics with the Prometheus registry
func (c *EconomyMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.itemNetProfit,
		c.itemMargin,
		c.networkReports,
		c.networkProfit,
		c.networkFacilities,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordRanking records the profitability of one ranked item
func (c *EconomyMetricsCollector) RecordRanking(itemID string, netProfit float64, margin float64) {
	c.itemNetProfit.WithLabelValues(itemID).Set(netProfit)
	c.itemMargin.WithLabelValues(itemID).Set(margin)
}

// RecordNetworkReport records a reconciled network report
func (c *EconomyMetricsCollector) RecordNetworkReport(mode string, facilities int, grandTotalProfit float64) {
	c.networkReports.WithLabelValues(mode).Inc()
	c.networkProfit.WithLabelValues(mode).Set(grandTotalProfit)
	c.networkFacilities.WithLabelValues(mode).Set(float64(facilities))
}
