package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const TableContractRecord = "contract_records"

// ContractRecord is one persisted entity of an agreement instance.
// Keys come from the fixed enumeration in the contract package.
type ContractRecord struct {
	InstanceId string `gorm:"primaryKey"`
	Key        string `gorm:"primaryKey"`
	Value      pgtype.JSONB
	UpdatedAt  time.Time
}

func (ContractRecord) TableName() string {
	return TableContractRecord
}
