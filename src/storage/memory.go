package storage

import (
	"context"
	"sync"

	"github.com/mixip/licensor/src/contract"
)

// Memory keeps the contract records in process memory.
// Used in tests and development mode, there is no durability.
type Memory struct {
	mtx     sync.RWMutex
	records map[contract.Key][]byte
}

func NewMemory() (self *Memory) {
	self = new(Memory)
	self.records = make(map[contract.Key][]byte)
	return
}

func (self *Memory) Get(ctx context.Context, key contract.Key) (value []byte, ok bool, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	value, ok = self.records[key]
	return
}

func (self *Memory) Has(ctx context.Context, key contract.Key) (ok bool, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	_, ok = self.records[key]
	return
}

func (self *Memory) Apply(ctx context.Context, batch contract.Batch) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	for key, value := range batch {
		self.records[key] = value
	}
	return
}
