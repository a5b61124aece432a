package limiter

import (
	"context"
	"time"
)

// ILimiter 以 key 區分的限流器, key 通常為買家ID
type ILimiter interface {
	Allow(ctx context.Context, key string) bool
}

type LimiterConfig struct {
	Capacity int
	RatePS   float64 // tokens/秒
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 20,
		RatePS:   5,
	}
}

func (c LimiterConfig) normalize() LimiterConfig {
	def := GetDefaultLimiterConfig()
	if c.Capacity <= 0 {
		c.Capacity = def.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = def.RatePS
	}
	return c
}

// fullAfter 從空桶補滿所需時間
func (c LimiterConfig) fullAfter() time.Duration {
	return time.Duration(float64(c.Capacity) / c.RatePS * float64(time.Second))
}
