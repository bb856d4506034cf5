package auth

import (
	"context"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/logger"

	"github.com/sirupsen/logrus"
)

type contextKey int

const callerKey contextKey = iota

// WithCaller attaches the proven caller identity to the context.
// Only trusted entry points (the gateway after token verification,
// the settlement scheduler acting as the contract manager) may set it.
func WithCaller(ctx context.Context, identity contract.Identity) context.Context {
	return context.WithValue(ctx, callerKey, identity)
}

func CallerFromContext(ctx context.Context) (identity contract.Identity, ok bool) {
	identity, ok = ctx.Value(callerKey).(contract.Identity)
	return
}

// CallerAuthorizer proves the caller holds a required identity by comparing
// it with the identity the entry point verified and attached to the context
type CallerAuthorizer struct {
	log *logrus.Entry
}

func NewCallerAuthorizer() (self *CallerAuthorizer) {
	self = new(CallerAuthorizer)
	self.log = logger.NewSublogger("authorizer")
	return
}

func (self *CallerAuthorizer) RequireAuth(ctx context.Context, identity contract.Identity) (err error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		self.log.Warn("No caller identity in context")
		return contract.ErrNotAuthorized
	}
	if caller != identity {
		self.log.WithField("caller", caller).Warn("Caller doesn't hold the required identity")
		return contract.ErrNotAuthorized
	}
	return
}

var _ contract.Authorizer = (*CallerAuthorizer)(nil)
