package server

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambda-jsonapi/internal/config"
	"lambda-jsonapi/pkg/lambdatest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:           "test",
		Stage:                 "test",
		Log:                   config.LogConfig{Level: "debug", Format: "json"},
		Alerting:              config.AlertingConfig{Enabled: true},
		Metrics:               config.MetricsConfig{Enabled: true, Namespace: "test"},
		DefaultRedirectStatus: http.StatusFound,
		RateLimit:             config.RateLimitConfig{RPS: 1, Burst: 1},
	}
}

func quietLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	return logger, &buf
}

func TestNewContainer(t *testing.T) {
	container, err := NewContainer(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, container.App)
	assert.NotNil(t, container.CustomerService)
	assert.Equal(t, logrus.DebugLevel, container.Logger.GetLevel())
	assert.NotEmpty(t, container.App.Routes())
}

func TestContainerServesCustomers(t *testing.T) {
	logger, logs := quietLogger()
	container, err := NewContainerWithLogger(testConfig(), logger)
	require.NoError(t, err)

	reply := container.App.Handle(context.Background(), lambdatest.NewEvent("GET", "/customers"))

	assert.Equal(t, http.StatusOK, reply.StatusCode)
	assert.Equal(t, 1, testutil.CollectAndCount(container.Registry, "test_dispatch_requests_total"))
	assert.Contains(t, logs.String(), "Container initialized")
}

func TestContainerWithoutMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	logger, _ := quietLogger()

	container, err := NewContainerWithLogger(cfg, logger)
	require.NoError(t, err)

	families, err := container.Registry.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultRedirectStatus = http.StatusOK

	_, err := NewContainer(cfg)

	assert.Error(t, err)
}
