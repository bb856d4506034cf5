package scheduler

import (
	"errors"
	"time"

	"github.com/mixip/licensor/src/auth"
	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/monitoring"
	"github.com/mixip/licensor/src/utils/task"

	"github.com/robfig/cron"
)

// Scheduler fires the standard settlement once the scheduled payment date
// is reached. Contracts that pay immediately upon approval never need it.
// It acts on behalf of the contract manager, whose identity the deployment
// is trusted with.
type Scheduler struct {
	*task.Task

	engine  *contract.Engine
	monitor monitoring.Monitor

	cron *cron.Cron
}

func NewScheduler(config *config.Config) (self *Scheduler) {
	self = new(Scheduler)

	self.cron = cron.New()

	self.Task = task.NewTask(config, "scheduler").
		WithOnBeforeStart(self.schedule).
		WithSubtaskFunc(self.run).
		WithWorkerPool(1, 1).
		WithOnStop(self.cron.Stop)

	return
}

func (self *Scheduler) WithEngine(engine *contract.Engine) *Scheduler {
	self.engine = engine
	return self
}

func (self *Scheduler) WithMonitor(monitor monitoring.Monitor) *Scheduler {
	self.monitor = monitor
	return self
}

func (self *Scheduler) schedule() (err error) {
	// A slow settlement must not pile up overlapping cron runs
	err = self.cron.AddFunc(self.Config.Scheduler.CronSpec, func() {
		self.SubmitToWorker(self.tick)
	})
	if err != nil {
		return
	}
	self.cron.Start()
	return
}

func (self *Scheduler) run() (err error) {
	// Keeps the task alive until Stop, cron does the actual work
	<-self.StopChannel
	return nil
}

func (self *Scheduler) tick() {
	self.monitor.GetReport().Scheduler.State.Ticks.Inc()

	info, err := self.engine.GetInfo(self.Ctx)
	if err != nil {
		if !errors.Is(err, contract.ErrNotInitialized) {
			self.Log.WithError(err).Error("Failed to read contract parameters")
		}
		return
	}

	if info.PaymentTime == 0 {
		// Settled synchronously upon approval
		return
	}

	now := uint64(time.Now().Unix())
	if now < info.PaymentDate() {
		return
	}

	ctx := auth.WithCaller(self.Ctx, info.Manager.Address)
	err = self.engine.Settle(ctx, now, nil)
	switch {
	case err == nil:
		self.monitor.GetReport().Scheduler.State.SettlementsTriggered.Inc()
		self.Log.Info("Scheduled settlement executed")
	case errors.Is(err, contract.ErrNoApprovedAssets), errors.Is(err, contract.ErrAssetsNotFound):
		// Nothing owed yet
	default:
		self.monitor.GetReport().Scheduler.Errors.SettleError.Inc()
		self.Log.WithError(err).Error("Scheduled settlement failed")
	}
}
