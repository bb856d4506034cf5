package gateway

import (
	"fmt"

	"github.com/mixip/licensor/src/auth"
	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/scheduler"
	"github.com/mixip/licensor/src/storage"
	"github.com/mixip/licensor/src/tokens"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/monitoring"
	monitor_contract "github.com/mixip/licensor/src/utils/monitoring/contract"
	"github.com/mixip/licensor/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the agreement service:
// storage, engine, operation gateway, monitoring and the settlement scheduler
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	monitor := monitor_contract.NewMonitor().
		WithMaxHistorySize(30)

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	store, err := self.setupStore(config)
	if err != nil {
		return
	}

	client := tokens.NewClient(&config.Token)
	if config.Token.SigningKey != "" {
		var signer *tokens.Signer
		signer, err = tokens.NewSigner(&config.Token)
		if err != nil {
			return
		}
		client = client.WithSigner(signer)
	}

	engine := contract.NewEngine(config).
		WithStore(store).
		WithAuthorizer(auth.NewCallerAuthorizer()).
		WithTransferService(client).
		WithMonitor(monitor)

	server, err := NewServer(config)
	if err != nil {
		return
	}
	server = server.
		WithEngine(engine).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(server.Task)

	if config.Scheduler.Enabled {
		settlementScheduler := scheduler.NewScheduler(config).
			WithEngine(engine).
			WithMonitor(monitor)
		self.Task = self.Task.WithSubtask(settlementScheduler.Task)
	}

	return
}

func (self *Controller) setupStore(config *config.Config) (store contract.Store, err error) {
	switch config.Contract.StorageBackend {
	case "memory":
		store = storage.NewMemory()
	case "redis":
		redisStore := storage.NewRedis(config)
		self.Task = self.Task.
			WithOnBeforeStart(func() error {
				return redisStore.Connect(self.Ctx)
			}).
			WithOnAfterStop(func() {
				err := redisStore.Close()
				if err != nil {
					self.Log.WithError(err).Error("Failed to close Redis connection")
				}
			})
		store = redisStore
	case "postgres":
		pgStore := storage.NewPostgres(config)
		self.Task = self.Task.
			WithOnBeforeStart(func() error {
				return pgStore.Connect(self.Ctx)
			})
		store = pgStore
	default:
		err = fmt.Errorf("unknown storage backend: %s", config.Contract.StorageBackend)
	}
	return
}
