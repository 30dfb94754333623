package app

import (
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/envutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

type Config struct {
	Port           string
	JWTSecretKey   string
	MetricsEnabled bool
	RedisAddr      string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           envutil.GetEnv("PORT", "8080", log),
		JWTSecretKey:   envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		MetricsEnabled: envutil.GetEnv("METRICS_ENABLED", "true", log) == "true",
		RedisAddr:      envutil.GetEnv("REDIS_ADDR", "", log),
	}
}
