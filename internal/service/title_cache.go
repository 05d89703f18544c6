package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yamdb/internal/cache"
	"yamdb/internal/model"
)

const (
	titleCacheTTL      = 5 * time.Minute
	titleGenerationKey = "title:generation"
)

// TitleCache keeps title details in Redis. Keys carry a generation tag so
// that flush invalidates every title at once. A nil *TitleCache never hits.
type TitleCache struct {
	cache *cache.Client
	ttl   time.Duration
}

// NewTitleCache wraps c for title details.
func NewTitleCache(c *cache.Client) *TitleCache {
	return &TitleCache{cache: c, ttl: titleCacheTTL}
}

func (c *TitleCache) key(ctx context.Context, id uint) string {
	gen, _ := c.cache.Get(ctx, titleGenerationKey)
	return fmt.Sprintf("title:%s:%d", gen, id)
}

func (c *TitleCache) get(ctx context.Context, id uint) (*model.Title, bool) {
	if c == nil {
		return nil, false
	}
	var title model.Title
	if !c.cache.GetJSON(ctx, c.key(ctx, id), &title) {
		return nil, false
	}
	return &title, true
}

func (c *TitleCache) put(ctx context.Context, title *model.Title) {
	if c == nil {
		return
	}
	_ = c.cache.SetJSON(ctx, c.key(ctx, title.ID), title, c.ttl)
}

func (c *TitleCache) forget(ctx context.Context, id uint) {
	if c == nil {
		return
	}
	_ = c.cache.Delete(ctx, c.key(ctx, id))
}

func (c *TitleCache) flush(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.cache.Set(ctx, titleGenerationKey, []byte(uuid.NewString()), 0)
}
