package contract

import (
	"context"
	"encoding/json"
)

// Key identifies one persisted record.
// No compound or range keys, no secondary indexes.
type Key string

const (
	// All the immutable contract parameters as an Info document
	KeyInfo Key = "contract_info"

	// The partner entitled to submit assets and receive payment
	KeyCreator Key = "creator"

	// Date the contract was accepted by the creator
	KeyAcceptanceDate Key = "acceptance_date"

	// Current lifecycle state
	KeyState Key = "contract_state"

	// The creator submitted assets as an AssetLedger document
	KeyAssets Key = "creator_assets"

	// Fee collected from prepayments
	KeyFee Key = "fee_profit"
)

// Batch collects the writes of one operation
type Batch map[Key][]byte

// Store is the host-provided durable key-value storage.
// Apply must be atomic: either every write in the batch lands or none does.
type Store interface {
	Get(ctx context.Context, key Key) (value []byte, ok bool, err error)
	Has(ctx context.Context, key Key) (bool, error)
	Apply(ctx context.Context, batch Batch) error
}

// Authorizer is the host-provided authorization capability.
// It either proves the caller holds the given identity or fails the operation.
type Authorizer interface {
	RequireAuth(ctx context.Context, identity Identity) error
}

func (self Batch) setJSON(key Key, v interface{}) (err error) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	self[key] = data
	return
}

func getJSON(ctx context.Context, store Store, key Key, out interface{}) (ok bool, err error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return
	}
	err = json.Unmarshal(data, out)
	return
}
