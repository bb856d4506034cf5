package monitor_contract

import (
	"net/http"
	"time"

	"github.com/mixip/licensor/src/utils/monitoring/report"
	"github.com/mixip/licensor/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Payout speed
	PaidCounts *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:       &report.RunReport{},
		Contract:  &report.ContractReport{},
		Gateway:   &report.GatewayReport{},
		Scheduler: &report.SchedulerReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorPayouts)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.PaidCounts = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func (self *Monitor) IsOK() bool {
	return true
}

// Measure payout speed
func (self *Monitor) monitorPayouts() (err error) {
	loaded := self.Report.Contract.State.AssetsPaid.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.PaidCounts.PushBack(loaded)
	if self.PaidCounts.Len() > self.historySize {
		self.PaidCounts.PopFront()
	}
	value := float64(self.PaidCounts.Back()-self.PaidCounts.Front()) / float64(self.PaidCounts.Len())

	self.Report.Contract.State.AverageAssetsPaidPerMinute.Store(value)
	return
}

func (self *Monitor) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
