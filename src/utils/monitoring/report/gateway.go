package report

import (
	"go.uber.org/atomic"
)

type GatewayErrors struct {
	BadRequest   atomic.Uint64 `json:"bad_request"`
	Unauthorized atomic.Uint64 `json:"unauthorized"`
	Internal     atomic.Uint64 `json:"internal"`
}

type GatewayState struct {
	RequestsServed atomic.Uint64 `json:"requests_served"`
}

type GatewayReport struct {
	State  GatewayState  `json:"state"`
	Errors GatewayErrors `json:"errors"`
}
