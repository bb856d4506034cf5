package contract

import (
	"math/big"
)

// Identity is an opaque address proven by the host's authorization capability
type Identity string

type AssetState string

const (
	AssetInReview AssetState = "IN_REVIEW"
	AssetApproved AssetState = "APPROVED"
	AssetRejected AssetState = "REJECTED"
	AssetPaid     AssetState = "PAID"
)

// Asset is a single submitted content item
type Asset struct {
	Url            string     `json:"url"`
	SubmissionDate uint64     `json:"submission_date"`
	State          AssetState `json:"state"`
}

// AssetLedger maps opaque asset ids to their records.
// Persisted as one document, read-whole mutate write-whole.
type AssetLedger map[string]Asset

type State string

const (
	StateActive   State = "ACTIVE"
	StateRejected State = "REJECTED"
	StateFinished State = "FINISHED"
)

type ContractType string

const (
	ContractTypeFixedPrice ContractType = "FIXED_PRICE"
	ContractTypeMilestones ContractType = "MILESTONES"
	ContractTypeLicensing  ContractType = "LICENSING"
)

type ChannelKind string

const (
	// Transfer of the chain's native fungible token
	ChannelNative ChannelKind = "NATIVE"
)

// PaymentChannel describes which external transfer mechanism settles the contract
type PaymentChannel struct {
	Kind    ChannelKind `json:"kind"`
	TokenId string      `json:"token_id"`
}

// Manager identifies the contract manager
type Manager struct {
	Address         Identity `json:"address"`
	Name            string   `json:"name"`
	JobPosition     string   `json:"job_position"`
	PhysicalAddress string   `json:"physical_address"`
}

// Info stores the immutable-after-init contract parameters
type Info struct {
	Manager Manager `json:"contract_manager"`

	// Identifiers in the off chain storage
	CompanyId    string `json:"company_id"`
	ProjectId    string `json:"project_id"`
	ContractName string `json:"contract_name"`

	PaymentChannel PaymentChannel `json:"payment_channel"`

	// Payment amount for each approved asset
	AssetPaymentAmount *big.Int `json:"asset_payment_amount"`

	CreationDate uint64 `json:"creation_date"`
	StartDate    uint64 `json:"start_date"`

	// Last day on which assets can be uploaded
	Deadline uint64 `json:"deadline"`

	ScopeOfWork     string `json:"scope_of_work"`
	RightsRoyalties string `json:"rights_royalties"`

	// Delay added to the deadline to obtain the scheduled payment date.
	// 0 means assets are paid immediately upon approval.
	PaymentTime uint64 `json:"payment_time"`

	Type ContractType `json:"contract_type"`
}

// PaymentDate is the scheduled settlement date
func (self *Info) PaymentDate() uint64 {
	return self.Deadline + self.PaymentTime
}

// Amounts are constrained to the signed 128-bit range of the host environment
var (
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

func fitsInt128(v *big.Int) bool {
	return v.Cmp(minInt128) >= 0 && v.Cmp(maxInt128) <= 0
}
