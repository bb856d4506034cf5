package scheduler

import (
	"context"
	"math/big"
	"time"

	"github.com/mixip/licensor/src/auth"
	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/storage"
	"github.com/mixip/licensor/src/utils/config"
	monitor_contract "github.com/mixip/licensor/src/utils/monitoring/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

type countingTransfer struct {
	calls int
}

func (self *countingTransfer) Transfer(ctx context.Context, channel contract.PaymentChannel, from, to contract.Identity, amount *big.Int) (err error) {
	self.calls++
	return
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

type SchedulerTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config

	transfer  *countingTransfer
	monitor   *monitor_contract.Monitor
	engine    *contract.Engine
	scheduler *Scheduler
}

func (s *SchedulerTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
}

func (s *SchedulerTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *SchedulerTestSuite) SetupTest() {
	s.transfer = &countingTransfer{}
	s.monitor = monitor_contract.NewMonitor().WithMaxHistorySize(10)
	s.engine = contract.NewEngine(s.config).
		WithStore(storage.NewMemory()).
		WithAuthorizer(auth.NewCallerAuthorizer()).
		WithTransferService(s.transfer).
		WithMonitor(s.monitor)
	s.scheduler = NewScheduler(s.config).
		WithEngine(s.engine).
		WithMonitor(s.monitor)
}

// Brings a contract to the point where assets are approved and waiting
// for the scheduled payment date
func (s *SchedulerTestSuite) prepare(paymentTime uint64) {
	info := &contract.Info{
		Manager:            contract.Manager{Address: "manager"},
		ContractName:       "Licensing agreement",
		PaymentChannel:     contract.PaymentChannel{Kind: contract.ChannelNative},
		AssetPaymentAmount: big.NewInt(5),
		Deadline:           1000,
		PaymentTime:        paymentTime,
		Type:               contract.ContractTypeLicensing,
	}
	require.Nil(s.T(), s.engine.Initialize(s.ctx, info, "creator"))

	ctx := auth.WithCaller(s.ctx, "creator")
	require.Nil(s.T(), s.engine.Sign(ctx, 10))
	require.Nil(s.T(), s.engine.SubmitAssets(ctx, map[string]string{"a": "https://assets/a"}, 20))

	ctx = auth.WithCaller(s.ctx, "manager")
	require.Nil(s.T(), s.engine.ApproveAssets(ctx, []string{"a"}, 30))
}

func (s *SchedulerTestSuite) TestSettlesPastPaymentDate() {
	// Payment date is already in the past relative to the wall clock
	s.prepare(1)
	s.scheduler.tick()

	assert.Equal(s.T(), 1, s.transfer.calls)
	assert.Equal(s.T(), uint64(1), s.monitor.GetReport().Scheduler.State.SettlementsTriggered.Load())

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), contract.AssetPaid, ledger["a"].State)
}

func (s *SchedulerTestSuite) TestWaitsUntilPaymentDate() {
	// Payment date far in the future
	future := uint64(time.Now().Unix()) + 3600
	s.prepare(future)
	s.scheduler.tick()

	assert.Equal(s.T(), 0, s.transfer.calls)
}

func (s *SchedulerTestSuite) TestIgnoresImmediatePaymentContracts() {
	info := &contract.Info{
		Manager:            contract.Manager{Address: "manager"},
		PaymentChannel:     contract.PaymentChannel{Kind: contract.ChannelNative},
		AssetPaymentAmount: big.NewInt(5),
		Deadline:           1000,
		PaymentTime:        0,
	}
	require.Nil(s.T(), s.engine.Initialize(s.ctx, info, "creator"))

	s.scheduler.tick()
	assert.Equal(s.T(), 0, s.transfer.calls)
}

func (s *SchedulerTestSuite) TestToleratesUninitializedContract() {
	s.scheduler.tick()

	assert.Equal(s.T(), 0, s.transfer.calls)
	assert.Equal(s.T(), uint64(1), s.monitor.GetReport().Scheduler.State.Ticks.Load())
	assert.Equal(s.T(), uint64(0), s.monitor.GetReport().Scheduler.Errors.SettleError.Load())
}

func (s *SchedulerTestSuite) TestToleratesNothingOwed() {
	s.prepare(1)

	s.scheduler.tick()
	require.Equal(s.T(), 1, s.transfer.calls)

	// Every asset is paid, subsequent ticks have nothing to settle
	s.scheduler.tick()
	assert.Equal(s.T(), 1, s.transfer.calls)
	assert.Equal(s.T(), uint64(0), s.monitor.GetReport().Scheduler.Errors.SettleError.Load())
}
