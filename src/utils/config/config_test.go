package config

import (
	"os"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	assert.False(s.T(), config.IsDevelopment)
	assert.Equal(s.T(), 30*time.Second, config.StopTimeout)
	assert.Equal(s.T(), "default", config.Contract.InstanceId)
	assert.Equal(s.T(), "postgres", config.Contract.StorageBackend)
	assert.NotEmpty(s.T(), config.Gateway.ListenAddress)
	assert.NotEmpty(s.T(), config.Scheduler.CronSpec)
}

func (s *ConfigTestSuite) TestEnvOverride() {
	os.Setenv("LICENSOR_CONTRACT_INSTANCE_ID", "agreement-42")
	os.Setenv("LICENSOR_CONTRACT_STORAGE_BACKEND", "memory")
	defer os.Unsetenv("LICENSOR_CONTRACT_INSTANCE_ID")
	defer os.Unsetenv("LICENSOR_CONTRACT_STORAGE_BACKEND")

	config, err := Load("")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), "agreement-42", config.Contract.InstanceId)
	assert.Equal(s.T(), "memory", config.Contract.StorageBackend)
}
