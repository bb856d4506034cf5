package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var ErrTransferRejected = errors.New("transfer rejected by token service")

type TransferRequest struct {
	Channel string `json:"channel"`
	TokenId string `json:"token_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

type TransferResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to the external token transfer service.
// A transfer either completes or fails, there are no retries: the spec of
// the settlement flow requires a failed transfer to abort the whole
// operation and leave the caller to reissue it later.
type Client struct {
	log    *logrus.Entry
	config *config.Token

	client *resty.Client
	signer *Signer
}

func NewClient(config *config.Token) (self *Client) {
	self = new(Client)
	self.log = logger.NewSublogger("token-client")
	self.config = config

	self.client = resty.New().
		SetBaseURL(config.Url).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "mixip.licensor").
		SetRetryCount(0).
		SetTransport(self.createTransport()).
		OnAfterResponse(self.onStatusToError)
	return
}

func (self *Client) WithSigner(signer *Signer) *Client {
	self.signer = signer
	return self
}

func (self *Client) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
	}

	return &http.Transport{
		ForceAttemptHTTP2:     true,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       self.config.IdleConnTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       10,
	}
}

// Converts HTTP status to errors
func (self *Client) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	self.log.WithField("status", resp.StatusCode()).WithField("body", string(resp.Body())).Error("Transfer request failed")
	return fmt.Errorf("%w: %s", ErrTransferRejected, resp.Status())
}

// Transfer moves amount from one identity to another over the given channel
func (self *Client) Transfer(ctx context.Context, channel contract.PaymentChannel, from, to contract.Identity, amount *big.Int) (err error) {
	req := self.client.R().
		SetContext(ctx)

	// Unsigned requests are only accepted by the development token service
	if self.signer != nil {
		var signed []byte
		signed, err = self.signer.SignTransfer(channel, from, to, amount)
		if err != nil {
			return
		}
		req.SetAuthToken(string(signed))
	}

	resp, err := req.
		SetBody(TransferRequest{
			Channel: string(channel.Kind),
			TokenId: channel.TokenId,
			From:    string(from),
			To:      string(to),
			Amount:  amount.String(),
		}).
		SetResult(&TransferResponse{}).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		Post("/v1/transfers")
	if err != nil {
		return
	}

	out, ok := resp.Result().(*TransferResponse)
	if !ok {
		return ErrTransferRejected
	}

	self.log.WithField("id", out.Id).WithField("amount", amount.String()).Debug("Transfer completed")
	return
}

var _ contract.TransferService = (*Client)(nil)
