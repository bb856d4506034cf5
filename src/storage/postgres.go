package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/logger"
	"github.com/mixip/licensor/src/utils/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres keeps the contract records in one table, value as JSONB.
// A batch is applied in a single transaction so an aborted operation
// leaves no partial writes behind.
type Postgres struct {
	log    *logrus.Entry
	config *config.Config

	db *gorm.DB
}

func NewPostgres(config *config.Config) (self *Postgres) {
	self = new(Postgres)
	self.log = logger.NewSublogger("pg-store")
	self.config = config
	return
}

func (self *Postgres) Connect(ctx context.Context) (err error) {
	self.db, err = model.NewConnection(ctx, self.config, "contract-store")
	return
}

// WithDB injects an existing connection, used in tests
func (self *Postgres) WithDB(db *gorm.DB) *Postgres {
	self.db = db
	return self
}

func (self *Postgres) Get(ctx context.Context, key contract.Key) (value []byte, ok bool, err error) {
	var record model.ContractRecord
	err = self.db.WithContext(ctx).
		Where("instance_id = ?", self.config.Contract.InstanceId).
		Where("key = ?", string(key)).
		First(&record).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return
	}
	value = record.Value.Bytes
	ok = true
	return
}

func (self *Postgres) Has(ctx context.Context, key contract.Key) (ok bool, err error) {
	var count int64
	err = self.db.WithContext(ctx).
		Model(&model.ContractRecord{}).
		Where("instance_id = ?", self.config.Contract.InstanceId).
		Where("key = ?", string(key)).
		Count(&count).
		Error
	if err != nil {
		return
	}
	ok = count > 0
	return
}

func (self *Postgres) Apply(ctx context.Context, batch contract.Batch) (err error) {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		for key, value := range batch {
			record := model.ContractRecord{
				InstanceId: self.config.Contract.InstanceId,
				Key:        string(key),
				UpdatedAt:  time.Now(),
			}
			err = record.Value.Set(value)
			if err != nil {
				return
			}

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "instance_id"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return
			}
		}
		return
	})
}

var _ contract.Store = (*Postgres)(nil)
var _ contract.Store = (*Redis)(nil)
var _ contract.Store = (*Memory)(nil)
