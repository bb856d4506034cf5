package report

import (
	"go.uber.org/atomic"
)

type ContractErrors struct {
	TransferError     atomic.Uint64 `json:"transfer_error"`
	StoreError        atomic.Uint64 `json:"store_error"`
	UnauthorizedError atomic.Uint64 `json:"unauthorized_error"`
	OverflowError     atomic.Uint64 `json:"overflow_error"`
}

type ContractState struct {
	AssetsSubmitted            atomic.Uint64  `json:"assets_submitted"`
	AssetsApproved             atomic.Uint64  `json:"assets_approved"`
	AssetsPaid                 atomic.Uint64  `json:"assets_paid"`
	SettlementsExecuted        atomic.Uint64  `json:"settlements_executed"`
	PrepaymentsExecuted        atomic.Uint64  `json:"prepayments_executed"`
	FeesCollected              atomic.Uint64  `json:"fees_collected"`
	AverageAssetsPaidPerMinute atomic.Float64 `json:"average_assets_paid_per_minute"`
}

type ContractReport struct {
	State  ContractState  `json:"state"`
	Errors ContractErrors `json:"errors"`
}
