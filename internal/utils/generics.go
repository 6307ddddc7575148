package utils

import (
	"fmt"
	"strconv"

	"github.com/mambasports/team-service/internal/configs"
	"go.uber.org/zap"
)

const defaultPort = 8080

func getPort(c *configs.Config, log *zap.Logger) int {
	port, err := strconv.Atoi(c.App.Port)
	if err != nil {
		log.Warn("invalid port, using default", zap.String("port", c.App.Port), zap.Int("default", defaultPort), zap.Error(err))
		return defaultPort
	}

	if port < 10 || port > 65535 {
		log.Warn("port out of range (10-65535), using default", zap.Int("port", port), zap.Int("default", defaultPort))
		return defaultPort
	}

	return port
}

func GetListenAddress(c *configs.Config, log *zap.Logger) string {
	port := getPort(c, log)

	if c.IsProduction() {
		return fmt.Sprintf("0.0.0.0:%d", port)
	}
	return fmt.Sprintf(":%d", port)
}

// Unique drops repeated values, keeping first occurrences in order.
func Unique[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
