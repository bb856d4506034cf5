package request

import (
	"github.com/mixip/licensor/src/contract"
)

type Initialize struct {
	Info    contract.Info `json:"info" binding:"required"`
	Creator string        `json:"creator" binding:"required"`
}

type UpdateCreator struct {
	Creator string `json:"creator" binding:"required"`
}

type Sign struct {
	Date uint64 `json:"date" binding:"required"`
}

type SubmitAssets struct {
	// Mapping of opaque asset id to its url
	Assets         map[string]string `json:"assets" binding:"required"`
	SubmissionDate uint64            `json:"submission_date" binding:"required"`
}

type ApproveAssets struct {
	Ids  []string `json:"ids" binding:"required"`
	Date uint64   `json:"date" binding:"required"`
}

type Settle struct {
	Date uint64 `json:"date" binding:"required"`

	// Identity paying early in exchange for the service fee
	PrepaymentSource *string `json:"prepayment_source,omitempty"`
}
