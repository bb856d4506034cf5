package cmd

import (
	"errors"
	"time"

	"github.com/mixip/licensor/src/auth"
	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/storage"
	"github.com/mixip/licensor/src/tokens"
	"github.com/mixip/licensor/src/utils/logger"
	monitor_contract "github.com/mixip/licensor/src/utils/monitoring/contract"

	"github.com/spf13/cobra"
)

var (
	settleDate             uint64
	settlePrepaymentSource string
)

func init() {
	settleCmd.Flags().Uint64Var(&settleDate, "date", 0, "settlement date, defaults to now")
	settleCmd.Flags().StringVar(&settlePrepaymentSource, "prepayment-source", "", "identity paying early in exchange for the service fee")
	RootCmd.AddCommand(settleCmd)
}

// Manual settlement trigger, an operational escape hatch when the
// scheduler is disabled or a settlement failed and has to be reissued
var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Execute the payment for approved assets",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("settle-cmd")

		var store contract.Store
		switch conf.Contract.StorageBackend {
		case "redis":
			redisStore := storage.NewRedis(conf)
			err = redisStore.Connect(ctx)
			if err != nil {
				return
			}
			defer func() {
				closeErr := redisStore.Close()
				if closeErr != nil {
					log.WithError(closeErr).Error("Failed to close Redis connection")
				}
			}()
			store = redisStore
		case "postgres":
			pgStore := storage.NewPostgres(conf)
			err = pgStore.Connect(ctx)
			if err != nil {
				return
			}
			store = pgStore
		default:
			return errors.New("settle requires a durable storage backend")
		}

		client := tokens.NewClient(&conf.Token)
		if conf.Token.SigningKey != "" {
			var signer *tokens.Signer
			signer, err = tokens.NewSigner(&conf.Token)
			if err != nil {
				return
			}
			client = client.WithSigner(signer)
		}

		engine := contract.NewEngine(conf).
			WithStore(store).
			WithAuthorizer(auth.NewCallerAuthorizer()).
			WithTransferService(client).
			WithMonitor(monitor_contract.NewMonitor().WithMaxHistorySize(30))

		date := settleDate
		if date == 0 {
			date = uint64(time.Now().Unix())
		}

		var source *contract.Identity
		var caller contract.Identity
		if settlePrepaymentSource != "" {
			identity := contract.Identity(settlePrepaymentSource)
			source = &identity
			caller = identity
		} else {
			var info *contract.Info
			info, err = engine.GetInfo(ctx)
			if err != nil {
				return
			}
			caller = info.Manager.Address
		}

		err = engine.Settle(auth.WithCaller(ctx, caller), date, source)
		if err != nil {
			return
		}

		log.WithField("date", date).Info("Settlement executed")
		return nil
	},
}
