package auth

import (
	"context"

	"github.com/mixip/licensor/src/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

type AuthTestSuite struct {
	suite.Suite
}

func (s *AuthTestSuite) TestCallerRoundTrip() {
	ctx := WithCaller(context.Background(), "manager")

	caller, ok := CallerFromContext(ctx)
	assert.True(s.T(), ok)
	assert.Equal(s.T(), contract.Identity("manager"), caller)
}

func (s *AuthTestSuite) TestMissingCaller() {
	_, ok := CallerFromContext(context.Background())
	assert.False(s.T(), ok)
}

func (s *AuthTestSuite) TestRequireAuth() {
	authorizer := NewCallerAuthorizer()

	ctx := WithCaller(context.Background(), "manager")
	assert.Nil(s.T(), authorizer.RequireAuth(ctx, "manager"))
	assert.ErrorIs(s.T(), authorizer.RequireAuth(ctx, "creator"), contract.ErrNotAuthorized)
	assert.ErrorIs(s.T(), authorizer.RequireAuth(context.Background(), "manager"), contract.ErrNotAuthorized)
}
