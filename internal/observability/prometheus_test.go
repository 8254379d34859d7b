package observability

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/config"
)

func TestSetupPrometheusExporterDisabled(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, mux)
}

func TestStartPrometheusServer(t *testing.T) {
	server, err := StartPrometheusServer(nil, "9090")
	require.NoError(t, err)
	assert.Nil(t, server)

	_, err = StartPrometheusServer(http.NewServeMux(), "")
	assert.Error(t, err)

	server, err = StartPrometheusServer(http.NewServeMux(), "0")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, ":0", server.Addr)
	assert.NoError(t, server.Shutdown(context.Background()))
}

func TestGetPrometheusConfig(t *testing.T) {
	defaults := GetPrometheusConfig(nil)
	assert.Equal(t, "/metrics", defaults.Endpoint)
	assert.False(t, defaults.Enabled)

	cfg := &config.Config{}
	cfg.Observability.Prometheus = config.PrometheusConfig{Enabled: true, Endpoint: "/m", Port: "9464"}
	assert.Equal(t, PrometheusConfig{Enabled: true, Endpoint: "/m", Port: "9464"}, GetPrometheusConfig(cfg))
}
