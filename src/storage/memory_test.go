package storage

import (
	"context"

	"github.com/mixip/licensor/src/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryTestSuite))
}

type MemoryTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *MemoryTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *MemoryTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *MemoryTestSuite) TestEmpty() {
	store := NewMemory()

	ok, err := store.Has(s.ctx, contract.KeyInfo)
	require.Nil(s.T(), err)
	assert.False(s.T(), ok)

	_, ok, err = store.Get(s.ctx, contract.KeyInfo)
	require.Nil(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *MemoryTestSuite) TestApplyBatch() {
	store := NewMemory()

	err := store.Apply(s.ctx, contract.Batch{
		contract.KeyState:   []byte(`"ACTIVE"`),
		contract.KeyCreator: []byte(`"creator"`),
	})
	require.Nil(s.T(), err)

	ok, err := store.Has(s.ctx, contract.KeyState)
	require.Nil(s.T(), err)
	assert.True(s.T(), ok)

	value, ok, err := store.Get(s.ctx, contract.KeyCreator)
	require.Nil(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), `"creator"`, string(value))
}

func (s *MemoryTestSuite) TestOverwrite() {
	store := NewMemory()

	err := store.Apply(s.ctx, contract.Batch{contract.KeyState: []byte(`"ACTIVE"`)})
	require.Nil(s.T(), err)
	err = store.Apply(s.ctx, contract.Batch{contract.KeyState: []byte(`"FINISHED"`)})
	require.Nil(s.T(), err)

	value, ok, err := store.Get(s.ctx, contract.KeyState)
	require.Nil(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), `"FINISHED"`, string(value))
}
