package config

import (
	"github.com/spf13/viper"
)

type Scheduler struct {
	// Whether the settlement scheduler runs at all.
	// Contracts with PaymentTime == 0 settle upon approval and don't need it.
	Enabled bool

	// Cron spec deciding how often the scheduler checks whether
	// the payment date has been reached
	CronSpec string
}

func setSchedulerDefaults() {
	viper.SetDefault("Scheduler.Enabled", "true")
	viper.SetDefault("Scheduler.CronSpec", "@every 1m")
}
