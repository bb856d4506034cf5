package contract

import (
	"context"
	"math/big"

	"github.com/mixip/licensor/src/utils/config"
	monitor_contract "github.com/mixip/licensor/src/utils/monitoring/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

type fakeStore struct {
	records map[Key][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[Key][]byte)}
}

func (self *fakeStore) Get(ctx context.Context, key Key) (value []byte, ok bool, err error) {
	value, ok = self.records[key]
	return
}

func (self *fakeStore) Has(ctx context.Context, key Key) (ok bool, err error) {
	_, ok = self.records[key]
	return
}

func (self *fakeStore) Apply(ctx context.Context, batch Batch) (err error) {
	for key, value := range batch {
		self.records[key] = value
	}
	return
}

// fakeAuthorizer proves exactly one identity, tests switch it between roles
type fakeAuthorizer struct {
	caller Identity
}

func (self *fakeAuthorizer) RequireAuth(ctx context.Context, identity Identity) (err error) {
	if self.caller != identity {
		return ErrNotAuthorized
	}
	return
}

type transferCall struct {
	from   Identity
	to     Identity
	amount *big.Int
}

type fakeTransfer struct {
	calls []transferCall
	err   error
}

func (self *fakeTransfer) Transfer(ctx context.Context, channel PaymentChannel, from, to Identity, amount *big.Int) (err error) {
	if self.err != nil {
		return self.err
	}
	self.calls = append(self.calls, transferCall{from: from, to: to, amount: amount})
	return
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

type EngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config

	store      *fakeStore
	authorizer *fakeAuthorizer
	transfer   *fakeTransfer
	engine     *Engine
}

const (
	testManager Identity = "manager"
	testCreator Identity = "creator"
	testSponsor Identity = "sponsor"

	testDeadline    uint64 = 1000
	testPaymentTime uint64 = 2629743
)

func (s *EngineTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
}

func (s *EngineTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *EngineTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.authorizer = &fakeAuthorizer{}
	s.transfer = &fakeTransfer{}
	s.engine = NewEngine(s.config).
		WithStore(s.store).
		WithAuthorizer(s.authorizer).
		WithTransferService(s.transfer).
		WithMonitor(monitor_contract.NewMonitor().WithMaxHistorySize(10))
}

func (s *EngineTestSuite) info(paymentTime uint64, amount int64) *Info {
	return &Info{
		Manager:            Manager{Address: testManager, Name: "Contract Manager"},
		CompanyId:          "company-1",
		ProjectId:          "project-1",
		ContractName:       "Licensing agreement",
		PaymentChannel:     PaymentChannel{Kind: ChannelNative},
		AssetPaymentAmount: big.NewInt(amount),
		CreationDate:       1,
		StartDate:          2,
		Deadline:           testDeadline,
		PaymentTime:        paymentTime,
		Type:               ContractTypeLicensing,
	}
}

func (s *EngineTestSuite) initialize(paymentTime uint64, amount int64) {
	err := s.engine.Initialize(s.ctx, s.info(paymentTime, amount), testCreator)
	require.Nil(s.T(), err)
}

func (s *EngineTestSuite) sign() {
	s.authorizer.caller = testCreator
	err := s.engine.Sign(s.ctx, 10)
	require.Nil(s.T(), err)
}

func (s *EngineTestSuite) submit(assets map[string]string) {
	s.authorizer.caller = testCreator
	err := s.engine.SubmitAssets(s.ctx, assets, 20)
	require.Nil(s.T(), err)
}

func (s *EngineTestSuite) approve(ids ...string) {
	s.authorizer.caller = testManager
	err := s.engine.ApproveAssets(s.ctx, ids, 30)
	require.Nil(s.T(), err)
}

func (s *EngineTestSuite) TestInitializeOnce() {
	s.initialize(testPaymentTime, 5)

	err := s.engine.Initialize(s.ctx, s.info(testPaymentTime, 5), testCreator)
	assert.ErrorIs(s.T(), err, ErrAlreadyInitialized)

	info, err := s.engine.GetInfo(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), testManager, info.Manager.Address)
	assert.Equal(s.T(), int64(5), info.AssetPaymentAmount.Int64())
	assert.Equal(s.T(), testDeadline+testPaymentTime, info.PaymentDate())
}

func (s *EngineTestSuite) TestInitializeRejectsOversizedAmount() {
	info := s.info(testPaymentTime, 1)
	info.AssetPaymentAmount = new(big.Int).Add(maxInt128, big.NewInt(1))

	err := s.engine.Initialize(s.ctx, info, testCreator)
	assert.ErrorIs(s.T(), err, ErrArithmeticOverflow)
}

func (s *EngineTestSuite) TestSignOnce() {
	s.initialize(testPaymentTime, 5)
	s.sign()

	err := s.engine.Sign(s.ctx, 11)
	assert.ErrorIs(s.T(), err, ErrAlreadyInProgress)

	state, err := s.engine.GetState(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), StateActive, state)
}

func (s *EngineTestSuite) TestSignRequiresCreator() {
	s.initialize(testPaymentTime, 5)

	s.authorizer.caller = testManager
	err := s.engine.Sign(s.ctx, 10)
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)

	_, err = s.engine.GetState(s.ctx)
	assert.ErrorIs(s.T(), err, ErrContractNotActive)
}

func (s *EngineTestSuite) TestSubmitBeforeSign() {
	s.initialize(testPaymentTime, 5)

	s.authorizer.caller = testCreator
	err := s.engine.SubmitAssets(s.ctx, map[string]string{"a": "https://assets/a"}, 20)
	assert.ErrorIs(s.T(), err, ErrContractNotActive)
}

func (s *EngineTestSuite) TestSubmitAndGetAssets() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{
		"a": "https://assets/a",
		"b": "https://assets/b",
	})

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	require.Len(s.T(), ledger, 2)
	assert.Equal(s.T(), AssetInReview, ledger["a"].State)
	assert.Equal(s.T(), AssetInReview, ledger["b"].State)
	assert.Equal(s.T(), "https://assets/a", ledger["a"].Url)
	assert.Equal(s.T(), uint64(20), ledger["a"].SubmissionDate)
}

func (s *EngineTestSuite) TestResubmissionResetsReview() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a")

	s.submit(map[string]string{"a": "https://assets/a-v2"})

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetInReview, ledger["a"].State)
	assert.Equal(s.T(), "https://assets/a-v2", ledger["a"].Url)
}

func (s *EngineTestSuite) TestApproveWithoutSubmissions() {
	s.initialize(testPaymentTime, 5)
	s.sign()

	s.authorizer.caller = testManager
	err := s.engine.ApproveAssets(s.ctx, []string{"a"}, 30)
	assert.ErrorIs(s.T(), err, ErrAssetsNotFound)
}

func (s *EngineTestSuite) TestApproveSkipsUnknownIds() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a", "missing")

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	require.Len(s.T(), ledger, 1)
	assert.Equal(s.T(), AssetApproved, ledger["a"].State)
}

func (s *EngineTestSuite) TestApproveRequiresManager() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})

	s.authorizer.caller = testCreator
	err := s.engine.ApproveAssets(s.ctx, []string{"a"}, 30)
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)
}

func (s *EngineTestSuite) TestApprovePaysImmediatelyWithoutDelay() {
	s.initialize(0, 5)
	s.sign()
	s.submit(map[string]string{
		"a": "https://assets/a",
		"b": "https://assets/b",
	})
	s.approve("a", "b")

	require.Len(s.T(), s.transfer.calls, 1)
	call := s.transfer.calls[0]
	assert.Equal(s.T(), testManager, call.from)
	assert.Equal(s.T(), testCreator, call.to)
	assert.Equal(s.T(), int64(10), call.amount.Int64())

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetPaid, ledger["a"].State)
	assert.Equal(s.T(), AssetPaid, ledger["b"].State)

	fee, err := s.engine.GetFee(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), int64(0), fee.Int64())
}

func (s *EngineTestSuite) TestStandardSettlement() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{
		"a": "https://assets/a",
		"b": "https://assets/b",
	})
	s.approve("a", "b")

	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	require.Nil(s.T(), err)

	require.Len(s.T(), s.transfer.calls, 1)
	call := s.transfer.calls[0]
	assert.Equal(s.T(), testManager, call.from)
	assert.Equal(s.T(), testCreator, call.to)
	assert.Equal(s.T(), int64(10), call.amount.Int64())

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetPaid, ledger["a"].State)
	assert.Equal(s.T(), AssetPaid, ledger["b"].State)
}

func (s *EngineTestSuite) TestSettleWithoutApprovedAssets() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})

	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	assert.ErrorIs(s.T(), err, ErrNoApprovedAssets)
	assert.Empty(s.T(), s.transfer.calls)
}

func (s *EngineTestSuite) TestPrepaymentTakesTenPercentFee() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{
		"a": "https://assets/a",
		"b": "https://assets/b",
	})
	s.approve("a", "b")

	sponsor := testSponsor
	s.authorizer.caller = testSponsor
	err := s.engine.Settle(s.ctx, 2000, &sponsor)
	require.Nil(s.T(), err)

	// total 10, fee floor(10/10)=1, creator receives 9
	require.Len(s.T(), s.transfer.calls, 1)
	call := s.transfer.calls[0]
	assert.Equal(s.T(), testSponsor, call.from)
	assert.Equal(s.T(), testCreator, call.to)
	assert.Equal(s.T(), int64(9), call.amount.Int64())

	fee, err := s.engine.GetFee(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), int64(1), fee.Int64())

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetPaid, ledger["a"].State)
	assert.Equal(s.T(), AssetPaid, ledger["b"].State)
}

func (s *EngineTestSuite) TestPrepaymentFeeAccumulates() {
	s.initialize(testPaymentTime, 50)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a")

	sponsor := testSponsor
	s.authorizer.caller = testSponsor
	err := s.engine.Settle(s.ctx, 2000, &sponsor)
	require.Nil(s.T(), err)

	s.submit(map[string]string{"b": "https://assets/b"})
	s.approve("b")

	s.authorizer.caller = testSponsor
	err = s.engine.Settle(s.ctx, 2000, &sponsor)
	require.Nil(s.T(), err)

	fee, err := s.engine.GetFee(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), int64(10), fee.Int64())
}

func (s *EngineTestSuite) TestPrepaymentRequiresSource() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a")

	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, 2000, nil)
	assert.ErrorIs(s.T(), err, ErrPrepaymentSourceMissing)
}

func (s *EngineTestSuite) TestFailedTransferLeavesStateUntouched() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a")

	s.transfer.err = assert.AnError
	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	assert.ErrorIs(s.T(), err, assert.AnError)

	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetApproved, ledger["a"].State)

	fee, err := s.engine.GetFee(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), int64(0), fee.Int64())
}

func (s *EngineTestSuite) TestPaymentAmountOverflow() {
	s.initialize(testPaymentTime, 1)
	s.sign()

	// Rewrite the persisted amount so two approved assets overflow the range
	info := s.info(testPaymentTime, 1)
	info.AssetPaymentAmount = new(big.Int).Set(maxInt128)
	batch := Batch{}
	require.Nil(s.T(), batch.setJSON(KeyInfo, info))
	require.Nil(s.T(), s.store.Apply(s.ctx, batch))

	s.submit(map[string]string{
		"a": "https://assets/a",
		"b": "https://assets/b",
	})
	s.approve("a", "b")

	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	assert.ErrorIs(s.T(), err, ErrArithmeticOverflow)
	assert.Empty(s.T(), s.transfer.calls)
}

func (s *EngineTestSuite) TestPaidAssetsAreSettledOnce() {
	s.initialize(testPaymentTime, 5)
	s.sign()
	s.submit(map[string]string{"a": "https://assets/a"})
	s.approve("a")

	s.authorizer.caller = testManager
	err := s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	require.Nil(s.T(), err)

	// Approving a paid asset again doesn't reopen it
	s.approve("a")
	ledger, err := s.engine.GetAssets(s.ctx)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), AssetPaid, ledger["a"].State)

	s.authorizer.caller = testManager
	err = s.engine.Settle(s.ctx, testDeadline+testPaymentTime, nil)
	assert.ErrorIs(s.T(), err, ErrNoApprovedAssets)
	assert.Len(s.T(), s.transfer.calls, 1)
}

func (s *EngineTestSuite) TestUpdateCreator() {
	s.initialize(testPaymentTime, 5)

	s.authorizer.caller = testManager
	err := s.engine.UpdateCreator(s.ctx, "creator-2")
	require.Nil(s.T(), err)

	// Only the new creator can sign now
	s.authorizer.caller = testCreator
	err = s.engine.Sign(s.ctx, 10)
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)

	s.authorizer.caller = "creator-2"
	err = s.engine.Sign(s.ctx, 10)
	assert.Nil(s.T(), err)
}

func (s *EngineTestSuite) TestUpdateCreatorRequiresManager() {
	s.initialize(testPaymentTime, 5)

	s.authorizer.caller = testCreator
	err := s.engine.UpdateCreator(s.ctx, "creator-2")
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)
}

func (s *EngineTestSuite) TestOperationsBeforeInitialize() {
	s.authorizer.caller = testManager
	err := s.engine.UpdateCreator(s.ctx, "creator-2")
	assert.ErrorIs(s.T(), err, ErrNotInitialized)

	_, err = s.engine.GetInfo(s.ctx)
	assert.ErrorIs(s.T(), err, ErrNotInitialized)

	_, err = s.engine.GetAssets(s.ctx)
	assert.ErrorIs(s.T(), err, ErrAssetsNotFound)
}
