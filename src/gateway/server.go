package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/mixip/licensor/src/auth"
	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/monitoring"
	"github.com/mixip/licensor/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/xid"
)

// Rest API server, serves the contract operation surface
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	engine  *contract.Engine
	monitor monitoring.Monitor

	// Raw public key callers' tokens are verified with.
	// Empty means development mode, identity comes from a plain header.
	callerKey interface{}

	// Immutable once written, safe to cache
	infoCache *cache.Cache
}

func NewServer(config *config.Config) (self *Server, err error) {
	self = new(Server)

	self.Task = task.NewTask(config, "gateway").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	self.Router = gin.New()

	self.httpServer = &http.Server{
		Addr:        config.Gateway.ListenAddress,
		Handler:     self.Router,
		ReadTimeout: config.Gateway.ServerRequestTimeout,
	}

	self.infoCache = cache.New(config.Gateway.InfoCacheTTL, 2*config.Gateway.InfoCacheTTL)

	if config.Gateway.CallerPublicKey != "" {
		var key jwk.Key
		key, err = jwk.ParseKey([]byte(config.Gateway.CallerPublicKey), jwk.WithPEM(true))
		if err != nil {
			return
		}
		var raw interface{}
		err = key.Raw(&raw)
		if err != nil {
			return
		}
		self.callerKey = raw
	} else {
		self.Log.Warn("No caller public key configured, accepting identities from headers")
	}

	return
}

func (self *Server) WithEngine(engine *contract.Engine) *Server {
	self.engine = engine
	return self
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) registerRoutes() {
	self.Router.Use(self.onRequestId, self.onCaller)

	v1 := self.Router.Group("v1")
	{
		v1.POST("contract", self.onInitialize)
		v1.GET("contract", self.onGetInfo)
		v1.PUT("contract/creator", self.onUpdateCreator)
		v1.POST("contract/sign", self.onSign)
		v1.GET("contract/state", self.onGetState)
		v1.GET("contract/fee", self.onGetFee)
		v1.POST("assets", self.onSubmitAssets)
		v1.POST("assets/approve", self.onApproveAssets)
		v1.GET("assets", self.onGetAssets)
		v1.POST("payments", self.onSettle)
	}
}

func (self *Server) run() (err error) {
	self.registerRoutes()

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start gateway server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown gateway server")
		return
	}
}

// Tags every request so failures can be correlated across logs
func (self *Server) onRequestId(c *gin.Context) {
	id := c.GetHeader("X-Request-Id")
	if id == "" {
		id = xid.New().String()
	}
	c.Header("X-Request-Id", id)
	c.Next()
}

// Resolves the caller identity and puts it into the request context.
// Operations decide themselves which identity they require, requests
// without a provable identity still pass through for public reads.
func (self *Server) onCaller(c *gin.Context) {
	self.monitor.GetReport().Gateway.State.RequestsServed.Inc()
	defer c.Next()

	if self.callerKey == nil {
		// Development mode
		identity := c.GetHeader("X-Caller-Identity")
		if identity != "" {
			self.setCaller(c, contract.Identity(identity))
		}
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse([]byte(raw), jwt.WithVerify(jwa.ES256, self.callerKey))
	if err != nil {
		self.Log.WithError(err).Debug("Caller token verification failed")
		self.monitor.GetReport().Gateway.Errors.Unauthorized.Inc()
		return
	}

	self.setCaller(c, contract.Identity(token.Subject()))
}

func (self *Server) setCaller(c *gin.Context, identity contract.Identity) {
	ctx := auth.WithCaller(c.Request.Context(), identity)
	c.Request = c.Request.WithContext(ctx)
}
