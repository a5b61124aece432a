package limiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	mu           sync.Mutex
	tokens       float64
	lastRefilled time.Time
}

/*
單機版, 每個 key 一個 bucket, 取用時才補充 token
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	LimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	cancel  chan struct{}
	once    sync.Once
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	return newTokenBucket(config, time.Now)
}

func newTokenBucket(config *LimiterConfig, now func() time.Time) *TokenBucket {
	t := &TokenBucket{
		buckets: make(map[string]*bucket),
		now:     now,
		cancel:  make(chan struct{}),
	}
	if config != nil {
		t.LimiterConfig = config.normalize()
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	go t.background()
	return t
}

func (t *TokenBucket) Allow(ctx context.Context, key string) bool {
	b := t.getBucket(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := t.now()
	b.tokens = t.countNewTokens(b.tokens, now.Sub(b.lastRefilled))
	b.lastRefilled = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (t *TokenBucket) getBucket(key string) *bucket {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(t.Capacity), lastRefilled: t.now()}
		t.buckets[key] = b
	}
	return b
}

func (t *TokenBucket) countNewTokens(current float64, elapsed time.Duration) float64 {
	newTokens := current + elapsed.Seconds()*t.RatePS
	if newTokens > float64(t.Capacity) {
		newTokens = float64(t.Capacity)
	}
	return newTokens
}

// background 定期移除已補滿的 bucket, 補滿的 bucket 與新建的等價
func (t *TokenBucket) background() {
	interval := t.fullAfter()
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			t.evictIdle()
		}
	}
}

func (t *TokenBucket) evictIdle() {
	idle := t.fullAfter()
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, b := range t.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefilled) >= idle {
			delete(t.buckets, key)
		}
		b.mu.Unlock()
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}

var _ ILimiter = (*TokenBucket)(nil)
