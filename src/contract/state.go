package contract

// Events that may move an asset through its lifecycle
type assetEvent string

const (
	eventApprove assetEvent = "approve"
	eventPay     assetEvent = "pay"
)

// Allowed transitions, keyed by (current state, event).
// Anything absent from the table is rejected, so a Paid asset can't be
// pushed back to Approved by a repeated approval.
// Nothing produces AssetRejected, the variant is declared but unreachable.
var assetTransitions = map[AssetState]map[assetEvent]AssetState{
	AssetInReview: {
		eventApprove: AssetApproved,
	},
	AssetApproved: {
		// Re-approval of an approved asset is a no-op
		eventApprove: AssetApproved,
		eventPay:     AssetPaid,
	},
}

func nextAssetState(current AssetState, event assetEvent) (next AssetState, ok bool) {
	events, ok := assetTransitions[current]
	if !ok {
		return
	}
	next, ok = events[event]
	return
}
