package tokens

import (
	"math/big"
	"time"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
)

// Signer proves the transfer request comes from this contract instance.
// The token service verifies the JWT against the published key.
type Signer struct {
	key jwk.Key
}

func NewSigner(config *config.Token) (self *Signer, err error) {
	self = new(Signer)

	self.key, err = jwk.ParseKey([]byte(config.SigningKey), jwk.WithPEM(true))
	if err != nil {
		return
	}

	if config.SigningKeyId != "" {
		err = self.key.Set(jwk.KeyIDKey, config.SigningKeyId)
		if err != nil {
			return
		}
	}
	return
}

// WithKey injects a ready key, used in tests
func (self *Signer) WithKey(key jwk.Key) *Signer {
	self.key = key
	return self
}

func (self *Signer) SignTransfer(channel contract.PaymentChannel, from, to contract.Identity, amount *big.Int) (signed []byte, err error) {
	t := jwt.New()
	claims := map[string]interface{}{
		jwt.IssuerKey:   "mixip.licensor",
		jwt.IssuedAtKey: time.Now(),
		"channel":       string(channel.Kind),
		"token_id":      channel.TokenId,
		"from":          string(from),
		"to":            string(to),
		"amount":        amount.String(),
	}
	for k, v := range claims {
		err = t.Set(k, v)
		if err != nil {
			return
		}
	}

	return jwt.Sign(t, jwa.ES256, self.key)
}
