package config

import (
	"time"

	"github.com/spf13/viper"
)

type Token struct {
	// Base URL of the external token transfer service
	Url string

	// Request timeout for transfer calls. Transfers are never retried,
	// a failed transfer aborts the whole settlement.
	RequestTimeout time.Duration

	DialerTimeout       time.Duration
	DialerKeepAlive     time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration

	// PEM-encoded EC private key used to sign transfer requests
	SigningKey string

	// Key id sent in the token header
	SigningKeyId string
}

func setTokenDefaults() {
	viper.SetDefault("Token.Url", "http://localhost:8030")
	viper.SetDefault("Token.RequestTimeout", "30s")
	viper.SetDefault("Token.DialerTimeout", "30s")
	viper.SetDefault("Token.DialerKeepAlive", "15s")
	viper.SetDefault("Token.TLSHandshakeTimeout", "10s")
	viper.SetDefault("Token.IdleConnTimeout", "31s")
	viper.SetDefault("Token.SigningKey", "")
	viper.SetDefault("Token.SigningKeyId", "")
}
