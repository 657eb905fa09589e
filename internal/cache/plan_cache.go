package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segyhp/installment-service/internal/domain"
)

const keyPrefix = "installment:"

// PlanCache keeps resolved plan details in Redis keyed by plan no.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{client: client, ttl: ttl}
}

func Key(no string) string {
	return keyPrefix + no
}

// Get returns nil without error on a cache miss.
func (c *PlanCache) Get(ctx context.Context, no string) (*domain.PlanDetail, error) {
	raw, err := c.client.Get(ctx, Key(no)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var detail domain.PlanDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("decode cached installment %s: %w", no, err)
	}

	return &detail, nil
}

func (c *PlanCache) Set(ctx context.Context, detail *domain.PlanDetail) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, Key(detail.No), raw, c.ttl).Err()
}

func (c *PlanCache) Delete(ctx context.Context, no string) error {
	return c.client.Del(ctx, Key(no)).Err()
}
