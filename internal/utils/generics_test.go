package utils

import (
	"testing"

	"github.com/mambasports/team-service/internal/configs"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetListenAddress(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	cfg := &configs.Config{}
	cfg.App.Port = "9090"
	assert.Equal(t, ":9090", GetListenAddress(cfg, log))

	cfg.App.Env = configs.EnvProduction
	assert.Equal(t, "0.0.0.0:9090", GetListenAddress(cfg, log))
	assert.Zero(t, logs.Len())

	cfg.App.Port = "nope"
	assert.Equal(t, "0.0.0.0:8080", GetListenAddress(cfg, log))

	cfg.App.Port = "70000"
	assert.Equal(t, "0.0.0.0:8080", GetListenAddress(cfg, log))
	assert.Equal(t, 2, logs.Len())
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Unique([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, Unique[string](nil))
}
