package report

import (
	"go.uber.org/atomic"
)

type SchedulerErrors struct {
	SettleError atomic.Uint64 `json:"settle_error"`
}

type SchedulerState struct {
	Ticks                atomic.Uint64 `json:"ticks"`
	SettlementsTriggered atomic.Uint64 `json:"settlements_triggered"`
}

type SchedulerReport struct {
	State  SchedulerState  `json:"state"`
	Errors SchedulerErrors `json:"errors"`
}
