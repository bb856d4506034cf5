package contract

import (
	"context"
	"math/big"
)

func (self *Engine) getFee(ctx context.Context) (fee *big.Int, err error) {
	fee = big.NewInt(0)
	_, err = getJSON(ctx, self.store, KeyFee, fee)
	return
}

// addFee stages an increased fee total into the batch.
// The running total stays within the signed 128-bit range.
func (self *Engine) addFee(ctx context.Context, delta *big.Int, batch Batch) (err error) {
	fee, err := self.getFee(ctx)
	if err != nil {
		return
	}

	fee = new(big.Int).Add(fee, delta)
	if !fitsInt128(fee) {
		self.monitor.GetReport().Contract.Errors.OverflowError.Inc()
		return ErrArithmeticOverflow
	}

	return batch.setJSON(KeyFee, fee)
}
