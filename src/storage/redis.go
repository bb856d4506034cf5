package storage

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/mixip/licensor/src/contract"
	"github.com/mixip/licensor/src/utils/config"
	"github.com/mixip/licensor/src/utils/logger"
	"github.com/mixip/licensor/src/utils/task"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis keeps the contract records as JSON documents in Redis.
// A batch is applied through one transactional pipeline.
type Redis struct {
	log    *logrus.Entry
	config *config.Config

	client *redis.Client
	prefix string
}

func NewRedis(config *config.Config) (self *Redis) {
	self = new(Redis)
	self.log = logger.NewSublogger("redis-store")
	self.config = config
	self.prefix = fmt.Sprintf("licensor:%s:", config.Contract.InstanceId)
	return
}

func (self *Redis) Connect(ctx context.Context) (err error) {
	redisConfig := self.config.Redis

	opts := redis.Options{
		ClientName:      "mixip.licensor",
		Addr:            fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port),
		Password:        redisConfig.Password,
		Username:        redisConfig.User,
		DB:              redisConfig.DB,
		MinIdleConns:    redisConfig.MinIdleConns,
		MaxIdleConns:    redisConfig.MaxIdleConns,
		ConnMaxIdleTime: redisConfig.ConnMaxIdleTime,
		PoolSize:        redisConfig.MaxOpenConns,
		ConnMaxLifetime: redisConfig.ConnMaxLifetime,
	}

	if redisConfig.ClientCert != "" && redisConfig.ClientKey != "" && redisConfig.CaCert != "" {
		cert, err := tls.X509KeyPair([]byte(redisConfig.ClientCert), []byte(redisConfig.ClientKey))
		if err != nil {
			self.log.WithError(err).Error("Failed to load client cert")
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM([]byte(redisConfig.CaCert)) {
			return errors.New("failed to append CA cert to pool")
		}

		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: false,
			RootCAs:            caCertPool,
			ClientCAs:          caCertPool,
			Certificates:       []tls.Certificate{cert},
		}
	}

	self.client = redis.NewClient(&opts)

	// The service may come up before Redis does
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(2 * time.Minute).
		WithMaxInterval(10 * time.Second).
		WithOnError(func(err error) {
			self.log.WithError(err).Warn("Failed to ping Redis, retrying")
		}).
		Run(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return self.client.Ping(pingCtx).Err()
		})
	if err != nil {
		self.log.WithError(err).Error("Failed to connect to Redis")
		return
	}

	return
}

func (self *Redis) Close() (err error) {
	return self.client.Close()
}

func (self *Redis) Get(ctx context.Context, key contract.Key) (value []byte, ok bool, err error) {
	value, err = self.client.Get(ctx, self.prefix+string(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return
	}
	ok = true
	return
}

func (self *Redis) Has(ctx context.Context, key contract.Key) (ok bool, err error) {
	n, err := self.client.Exists(ctx, self.prefix+string(key)).Result()
	if err != nil {
		return
	}
	ok = n > 0
	return
}

func (self *Redis) Apply(ctx context.Context, batch contract.Batch) (err error) {
	_, err = self.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range batch {
			pipe.Set(ctx, self.prefix+string(key), value, 0)
		}
		return nil
	})
	return
}
