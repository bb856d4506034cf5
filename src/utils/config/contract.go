package config

import (
	"github.com/spf13/viper"
)

type Contract struct {
	// Identifier of the deployed agreement instance, used to namespace storage keys
	InstanceId string

	// Which storage backend keeps the contract records: memory | redis | postgres
	StorageBackend string
}

func setContractDefaults() {
	viper.SetDefault("Contract.InstanceId", "default")
	viper.SetDefault("Contract.StorageBackend", "postgres")
}
