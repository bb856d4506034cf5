package response

import (
	"sort"

	"github.com/mixip/licensor/src/contract"
)

type Asset struct {
	Id             string `json:"id"`
	Url            string `json:"url"`
	SubmissionDate uint64 `json:"submission_date"`
	State          string `json:"state"`
}

type State struct {
	State string `json:"state"`
}

type Fee struct {
	// Decimal string, fee totals may exceed 64 bits
	Fee string `json:"fee"`
}

type Error struct {
	Error string `json:"error"`
}

func AssetsToResponse(ledger contract.AssetLedger) (out []Asset) {
	out = make([]Asset, 0, len(ledger))
	for id, asset := range ledger {
		out = append(out, Asset{
			Id:             id,
			Url:            asset.Url,
			SubmissionDate: asset.SubmissionDate,
			State:          string(asset.State),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return
}
