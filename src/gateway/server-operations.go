package gateway

import (
	"errors"
	"net/http"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/gateway/request"
	"github.com/mixip/licensor/src/gateway/response"

	"github.com/gin-gonic/gin"
)

const infoCacheKey = "contract_info"

func (self *Server) onError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, contract.ErrAlreadyInitialized),
		errors.Is(err, contract.ErrAlreadyInProgress),
		errors.Is(err, contract.ErrContractNotActive),
		errors.Is(err, contract.ErrNoApprovedAssets):
		status = http.StatusConflict
	case errors.Is(err, contract.ErrAssetsNotFound),
		errors.Is(err, contract.ErrNotInitialized):
		status = http.StatusNotFound
	case errors.Is(err, contract.ErrNotAuthorized):
		status = http.StatusForbidden
		self.monitor.GetReport().Gateway.Errors.Unauthorized.Inc()
	case errors.Is(err, contract.ErrArithmeticOverflow),
		errors.Is(err, contract.ErrPrepaymentSourceMissing):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		self.monitor.GetReport().Gateway.Errors.Internal.Inc()
		self.Log.WithError(err).Error("Operation failed")
	}
	c.AbortWithStatusJSON(status, response.Error{Error: err.Error()})
}

func (self *Server) onBadRequest(c *gin.Context, err error) {
	self.monitor.GetReport().Gateway.Errors.BadRequest.Inc()
	c.AbortWithStatusJSON(http.StatusBadRequest, response.Error{Error: err.Error()})
}

func (self *Server) onInitialize(c *gin.Context) {
	var in = new(request.Initialize)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.engine.Initialize(c.Request.Context(), &in.Info, contract.Identity(in.Creator))
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (self *Server) onUpdateCreator(c *gin.Context) {
	var in = new(request.UpdateCreator)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.engine.UpdateCreator(c.Request.Context(), contract.Identity(in.Creator))
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (self *Server) onSign(c *gin.Context) {
	var in = new(request.Sign)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.engine.Sign(c.Request.Context(), in.Date)
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (self *Server) onSubmitAssets(c *gin.Context) {
	var in = new(request.SubmitAssets)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.engine.SubmitAssets(c.Request.Context(), in.Assets, in.SubmissionDate)
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (self *Server) onApproveAssets(c *gin.Context) {
	var in = new(request.ApproveAssets)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.engine.ApproveAssets(c.Request.Context(), in.Ids, in.Date)
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (self *Server) onSettle(c *gin.Context) {
	var in = new(request.Settle)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	var source *contract.Identity
	if in.PrepaymentSource != nil {
		identity := contract.Identity(*in.PrepaymentSource)
		source = &identity
	}

	err = self.engine.Settle(c.Request.Context(), in.Date, source)
	if err != nil {
		self.onError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (self *Server) onGetAssets(c *gin.Context) {
	ledger, err := self.engine.GetAssets(c.Request.Context())
	if err != nil {
		self.onError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.AssetsToResponse(ledger))
}

func (self *Server) onGetState(c *gin.Context) {
	state, err := self.engine.GetState(c.Request.Context())
	if err != nil {
		self.onError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.State{State: string(state)})
}

func (self *Server) onGetFee(c *gin.Context) {
	fee, err := self.engine.GetFee(c.Request.Context())
	if err != nil {
		self.onError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Fee{Fee: fee.String()})
}

func (self *Server) onGetInfo(c *gin.Context) {
	// Parameters never change after initialization, serve from cache
	if cached, ok := self.infoCache.Get(infoCacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	info, err := self.engine.GetInfo(c.Request.Context())
	if err != nil {
		self.onError(c, err)
		return
	}

	self.infoCache.SetDefault(infoCacheKey, info)
	c.JSON(http.StatusOK, info)
}
