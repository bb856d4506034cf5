package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// Address the operation REST API binds to
	ListenAddress string

	// Max time a single request may take
	ServerRequestTimeout time.Duration

	// PEM-encoded public key used to verify caller tokens
	CallerPublicKey string

	// How long immutable responses (contract info) are kept in the cache
	InfoCacheTTL time.Duration
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.ListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Gateway.ServerRequestTimeout", "30s")
	viper.SetDefault("Gateway.CallerPublicKey", "")
	viper.SetDefault("Gateway.InfoCacheTTL", "5m")
}
