package monitor_contract

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// State
	AssetsSubmitted     *prometheus.Desc `json:"assets_submitted"`
	AssetsApproved      *prometheus.Desc `json:"assets_approved"`
	AssetsPaid          *prometheus.Desc `json:"assets_paid"`
	SettlementsExecuted *prometheus.Desc `json:"settlements_executed"`
	PrepaymentsExecuted *prometheus.Desc `json:"prepayments_executed"`
	FeesCollected       *prometheus.Desc `json:"fees_collected"`
	RequestsServed      *prometheus.Desc `json:"requests_served"`

	// Errors
	TransferError     *prometheus.Desc `json:"transfer_error"`
	StoreError        *prometheus.Desc `json:"store_error"`
	UnauthorizedError *prometheus.Desc `json:"unauthorized_error"`
	OverflowError     *prometheus.Desc `json:"overflow_error"`
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "licensor",
	}

	return &Collector{
		AssetsSubmitted:     prometheus.NewDesc("assets_submitted", "", nil, labels),
		AssetsApproved:      prometheus.NewDesc("assets_approved", "", nil, labels),
		AssetsPaid:          prometheus.NewDesc("assets_paid", "", nil, labels),
		SettlementsExecuted: prometheus.NewDesc("settlements_executed", "", nil, labels),
		PrepaymentsExecuted: prometheus.NewDesc("prepayments_executed", "", nil, labels),
		FeesCollected:       prometheus.NewDesc("fees_collected", "", nil, labels),
		RequestsServed:      prometheus.NewDesc("requests_served", "", nil, labels),
		TransferError:       prometheus.NewDesc("transfer_error", "", nil, labels),
		StoreError:          prometheus.NewDesc("store_error", "", nil, labels),
		UnauthorizedError:   prometheus.NewDesc("unauthorized_error", "", nil, labels),
		OverflowError:       prometheus.NewDesc("overflow_error", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.AssetsSubmitted
	ch <- self.AssetsApproved
	ch <- self.AssetsPaid
	ch <- self.SettlementsExecuted
	ch <- self.PrepaymentsExecuted
	ch <- self.FeesCollected
	ch <- self.RequestsServed
	ch <- self.TransferError
	ch <- self.StoreError
	ch <- self.UnauthorizedError
	ch <- self.OverflowError
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.AssetsSubmitted, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.AssetsSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsApproved, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.AssetsApproved.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsPaid, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.AssetsPaid.Load()))
	ch <- prometheus.MustNewConstMetric(self.SettlementsExecuted, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.SettlementsExecuted.Load()))
	ch <- prometheus.MustNewConstMetric(self.PrepaymentsExecuted, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.PrepaymentsExecuted.Load()))
	ch <- prometheus.MustNewConstMetric(self.FeesCollected, prometheus.CounterValue, float64(self.monitor.Report.Contract.State.FeesCollected.Load()))
	ch <- prometheus.MustNewConstMetric(self.RequestsServed, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.RequestsServed.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransferError, prometheus.CounterValue, float64(self.monitor.Report.Contract.Errors.TransferError.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreError, prometheus.CounterValue, float64(self.monitor.Report.Contract.Errors.StoreError.Load()))
	ch <- prometheus.MustNewConstMetric(self.UnauthorizedError, prometheus.CounterValue, float64(self.monitor.Report.Contract.Errors.UnauthorizedError.Load()))
	ch <- prometheus.MustNewConstMetric(self.OverflowError, prometheus.CounterValue, float64(self.monitor.Report.Contract.Errors.OverflowError.Load()))
}
