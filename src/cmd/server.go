package cmd

import (
	"github.com/mixip/licensor/src/gateway"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the contract operation API and run the settlement scheduler",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := gateway.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}
		defer controller.StopWait()

		<-ctx.Done()
		return nil
	},
}
