package contract

import (
	"context"
	"math/big"
	"sort"
)

// TransferService is the external token transfer capability.
// The call either completes a balance movement or fails, there is no
// partial result and the engine never retries it.
type TransferService interface {
	Transfer(ctx context.Context, channel PaymentChannel, from, to Identity, amount *big.Int) error
}

var feeDivisor = big.NewInt(10)

// executePayment computes the amount owed for approved assets, invokes the
// transfer capability and stages the Paid states (and possibly the fee)
// into the batch. Nothing is persisted here, the caller applies the batch.
func (self *Engine) executePayment(ctx context.Context, info *Info, ledger AssetLedger, date uint64, prepaymentSource *Identity, batch Batch) (err error) {
	creator, err := self.getCreator(ctx)
	if err != nil {
		return
	}

	total, toPay, err := self.calculatePaymentAmount(info, ledger)
	if err != nil {
		return
	}

	prepayment := info.PaymentDate() > date && info.PaymentTime != 0
	if prepayment {
		// Early settlement, the prepayment source covers the amount
		// minus a 10% service fee
		if prepaymentSource == nil {
			return ErrPrepaymentSourceMissing
		}
		err = self.authorizer.RequireAuth(ctx, *prepaymentSource)
		if err != nil {
			self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
			return
		}

		// Fixed-point: floor(total / 10), no floats near money
		fee := new(big.Int).Quo(total, feeDivisor)
		prepaymentAmount := new(big.Int).Sub(total, fee)

		err = self.addFee(ctx, fee, batch)
		if err != nil {
			return
		}

		err = self.transfer.Transfer(ctx, info.PaymentChannel, *prepaymentSource, creator, prepaymentAmount)
		if err != nil {
			self.monitor.GetReport().Contract.Errors.TransferError.Inc()
			return
		}

		self.monitor.GetReport().Contract.State.PrepaymentsExecuted.Inc()
		if fee.IsUint64() {
			self.monitor.GetReport().Contract.State.FeesCollected.Add(fee.Uint64())
		}
		self.log.WithField("amount", prepaymentAmount.String()).WithField("fee", fee.String()).Info("Prepayment executed")
	} else {
		// On-time settlement, the contract manager pays in full
		err = self.authorizer.RequireAuth(ctx, info.Manager.Address)
		if err != nil {
			self.monitor.GetReport().Contract.Errors.UnauthorizedError.Inc()
			return
		}

		err = self.transfer.Transfer(ctx, info.PaymentChannel, info.Manager.Address, creator, total)
		if err != nil {
			self.monitor.GetReport().Contract.Errors.TransferError.Inc()
			return
		}

		self.log.WithField("amount", total.String()).Info("Payment executed")
	}

	// The transfer succeeded, only now the assets become Paid
	for _, id := range toPay {
		asset := ledger[id]
		next, ok := nextAssetState(asset.State, eventPay)
		if !ok {
			continue
		}
		asset.State = next
		ledger[id] = asset
	}

	err = batch.setJSON(KeyAssets, ledger)
	if err != nil {
		return
	}

	self.monitor.GetReport().Contract.State.SettlementsExecuted.Inc()
	self.monitor.GetReport().Contract.State.AssetsPaid.Add(uint64(len(toPay)))
	return
}

// calculatePaymentAmount collects every approved asset and multiplies the
// per-asset amount by their count, aborting when the result leaves the
// signed 128-bit range
func (self *Engine) calculatePaymentAmount(info *Info, ledger AssetLedger) (total *big.Int, ids []string, err error) {
	for id, asset := range ledger {
		if asset.State == AssetApproved {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		err = ErrNoApprovedAssets
		return
	}
	sort.Strings(ids)

	total = new(big.Int).Mul(info.AssetPaymentAmount, big.NewInt(int64(len(ids))))
	if !fitsInt128(total) {
		self.monitor.GetReport().Contract.Errors.OverflowError.Inc()
		total = nil
		ids = nil
		err = ErrArithmeticOverflow
	}
	return
}
