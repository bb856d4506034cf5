package contract

import (
	"context"
	"math/big"
	"sync"

	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/logger"
	"github.com/mixip/licensor/src/utils/monitoring"

	"github.com/sirupsen/logrus"
)

// Engine owns the full lifecycle of one licensing agreement:
// review state machine, lifecycle gates and payment computation.
// The host serializes calls against an instance, the mutex enforces that here.
// Every operation is all-or-nothing: writes are staged into a Batch and
// applied only after everything, including the external transfer, succeeded.
type Engine struct {
	Config *config.Config
	log    *logrus.Entry

	mtx        sync.Mutex
	store      Store
	authorizer Authorizer
	transfer   TransferService
	monitor    monitoring.Monitor
}

func NewEngine(config *config.Config) (self *Engine) {
	self = new(Engine)
	self.log = logger.NewSublogger("engine")
	self.Config = config
	return
}

func (self *Engine) WithStore(v Store) *Engine {
	self.store = v
	return self
}

func (self *Engine) WithAuthorizer(v Authorizer) *Engine {
	self.authorizer = v
	return self
}

func (self *Engine) WithTransferService(v TransferService) *Engine {
	self.transfer = v
	return self
}

func (self *Engine) WithMonitor(monitor monitoring.Monitor) *Engine {
	self.monitor = monitor
	return self
}

// Initialize writes the immutable contract parameters and the creator identity
func (self *Engine) Initialize(ctx context.Context, info *Info, creator Identity) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	has, err := self.store.Has(ctx, KeyInfo)
	if err != nil {
		return
	}
	if has {
		return ErrAlreadyInitialized
	}

	if info.AssetPaymentAmount == nil || !fitsInt128(info.AssetPaymentAmount) {
		return ErrArithmeticOverflow
	}

	batch := Batch{}
	err = batch.setJSON(KeyInfo, info)
	if err != nil {
		return
	}
	err = batch.setJSON(KeyCreator, creator)
	if err != nil {
		return
	}

	self.log.WithField("contract", info.ContractName).Info("Contract initialized")
	return self.apply(ctx, batch)
}

// UpdateCreator replaces the creator identity, contract manager only
func (self *Engine) UpdateCreator(ctx context.Context, creator Identity) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	info, err := self.getInfo(ctx)
	if err != nil {
		return
	}

	err = self.authorizer.RequireAuth(ctx, info.Manager.Address)
	if err != nil {
		self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
		return
	}

	batch := Batch{}
	err = batch.setJSON(KeyCreator, creator)
	if err != nil {
		return
	}
	return self.apply(ctx, batch)
}

// Sign accepts the agreement on behalf of the creator and activates it
func (self *Engine) Sign(ctx context.Context, date uint64) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	has, err := self.store.Has(ctx, KeyState)
	if err != nil {
		return
	}
	if has {
		return ErrAlreadyInProgress
	}

	creator, err := self.getCreator(ctx)
	if err != nil {
		return
	}

	err = self.authorizer.RequireAuth(ctx, creator)
	if err != nil {
		self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
		return
	}

	batch := Batch{}
	err = batch.setJSON(KeyState, StateActive)
	if err != nil {
		return
	}
	err = batch.setJSON(KeyAcceptanceDate, date)
	if err != nil {
		return
	}

	self.log.WithField("date", date).Info("Contract signed")
	return self.apply(ctx, batch)
}

// SubmitAssets merges a batch of id->url submissions into the ledger.
// Every submitted id starts over in review, resubmission of a known id
// resets its record.
func (self *Engine) SubmitAssets(ctx context.Context, assets map[string]string, submissionDate uint64) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	active, err := self.isActive(ctx)
	if err != nil {
		return
	}
	if !active {
		return ErrContractNotActive
	}

	creator, err := self.getCreator(ctx)
	if err != nil {
		return
	}

	err = self.authorizer.RequireAuth(ctx, creator)
	if err != nil {
		self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
		return
	}

	ledger := AssetLedger{}
	_, err = getJSON(ctx, self.store, KeyAssets, &ledger)
	if err != nil {
		return
	}

	for id, url := range assets {
		ledger[id] = Asset{
			Url:            url,
			SubmissionDate: submissionDate,
			State:          AssetInReview,
		}
	}

	batch := Batch{}
	err = batch.setJSON(KeyAssets, ledger)
	if err != nil {
		return
	}
	err = self.apply(ctx, batch)
	if err != nil {
		return
	}

	self.monitor.GetReport().Contract.State.AssetsSubmitted.Add(uint64(len(assets)))
	self.log.WithField("count", len(assets)).Info("Assets submitted")
	return
}

// ApproveAssets moves the given assets to the approved state.
// Unknown ids and assets whose state doesn't allow approval are skipped.
// When no payment delay is configured the approved assets are settled
// within the same operation.
func (self *Engine) ApproveAssets(ctx context.Context, ids []string, date uint64) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	info, err := self.getInfo(ctx)
	if err != nil {
		return
	}

	err = self.authorizer.RequireAuth(ctx, info.Manager.Address)
	if err != nil {
		self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
		return
	}

	has, err := self.store.Has(ctx, KeyAssets)
	if err != nil {
		return
	}
	if !has {
		return ErrAssetsNotFound
	}

	ledger := AssetLedger{}
	_, err = getJSON(ctx, self.store, KeyAssets, &ledger)
	if err != nil {
		return
	}

	var approved uint64
	for _, id := range ids {
		asset, ok := ledger[id]
		if !ok {
			continue
		}
		next, ok := nextAssetState(asset.State, eventApprove)
		if !ok {
			self.log.WithField("id", id).WithField("state", asset.State).Warn("Approval not allowed, skipping")
			continue
		}
		asset.State = next
		ledger[id] = asset
		approved++
	}

	batch := Batch{}
	if info.PaymentTime == 0 {
		// Pay immediately, within the same all-or-nothing operation
		err = self.executePayment(ctx, info, ledger, date, nil, batch)
		if err != nil {
			return
		}
	} else {
		err = batch.setJSON(KeyAssets, ledger)
		if err != nil {
			return
		}
	}

	err = self.apply(ctx, batch)
	if err != nil {
		return
	}

	self.monitor.GetReport().Contract.State.AssetsApproved.Add(approved)
	self.log.WithField("count", approved).WithField("date", date).Info("Assets approved")
	return
}

// Settle computes the amount owed for approved assets and transfers it.
// A prepayment source switches to the fee-bearing early settlement branch.
func (self *Engine) Settle(ctx context.Context, date uint64, prepaymentSource *Identity) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	info, err := self.getInfo(ctx)
	if err != nil {
		return
	}

	has, err := self.store.Has(ctx, KeyAssets)
	if err != nil {
		return
	}
	if !has {
		return ErrAssetsNotFound
	}

	ledger := AssetLedger{}
	_, err = getJSON(ctx, self.store, KeyAssets, &ledger)
	if err != nil {
		return
	}

	batch := Batch{}
	err = self.executePayment(ctx, info, ledger, date, prepaymentSource, batch)
	if err != nil {
		return
	}

	return self.apply(ctx, batch)
}

// GetAssets returns the full ledger
func (self *Engine) GetAssets(ctx context.Context) (ledger AssetLedger, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	has, err := self.store.Has(ctx, KeyAssets)
	if err != nil {
		return
	}
	if !has {
		err = ErrAssetsNotFound
		return
	}

	ledger = AssetLedger{}
	_, err = getJSON(ctx, self.store, KeyAssets, &ledger)
	return
}

// GetState returns the lifecycle state
func (self *Engine) GetState(ctx context.Context) (state State, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	ok, err := getJSON(ctx, self.store, KeyState, &state)
	if err != nil {
		return
	}
	if !ok {
		err = ErrContractNotActive
	}
	return
}

// GetFee returns the accumulated prepayment fee, 0 when nothing was collected
func (self *Engine) GetFee(ctx context.Context) (fee *big.Int, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	return self.getFee(ctx)
}

// GetInfo returns the contract parameters
func (self *Engine) GetInfo(ctx context.Context) (info *Info, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	return self.getInfo(ctx)
}

func (self *Engine) apply(ctx context.Context, batch Batch) (err error) {
	err = self.store.Apply(ctx, batch)
	if err != nil {
		self.monitor.GetReport().Contract.Errors.StoreError.Inc()
		self.log.WithError(err).Error("Failed to apply batch")
	}
	return
}

func (self *Engine) getInfo(ctx context.Context) (info *Info, err error) {
	info = new(Info)
	ok, err := getJSON(ctx, self.store, KeyInfo, info)
	if err != nil {
		return
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return
}

func (self *Engine) getCreator(ctx context.Context) (creator Identity, err error) {
	ok, err := getJSON(ctx, self.store, KeyCreator, &creator)
	if err != nil {
		return
	}
	if !ok {
		err = ErrNotInitialized
	}
	return
}

func (self *Engine) isActive(ctx context.Context) (active bool, err error) {
	var state State
	ok, err := getJSON(ctx, self.store, KeyState, &state)
	if err != nil {
		return
	}
	active = ok && state == StateActive
	return
}
