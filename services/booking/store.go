package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease/models"
	"mindease/utils"

	"github.com/go-redis/redis/v8"
)

// FlowStore persists booking flows between requests.
type FlowStore interface {
	Get(ctx context.Context, id string) (*models.BookingFlow, error)
	Put(ctx context.Context, flow *models.BookingFlow) error
	Delete(ctx context.Context, id string) error
	// AcquireCheckout takes the per-flow checkout lock; false means another
	// checkout holds it.
	AcquireCheckout(ctx context.Context, id string) (bool, error)
	ReleaseCheckout(ctx context.Context, id string) error
}

const checkoutLockTTL = 2 * time.Minute

type RedisFlowStore struct {
	client redis.Cmdable
	docs   *utils.JSONStore[models.BookingFlow]
}

func NewRedisFlowStore(client redis.Cmdable, ttl time.Duration) *RedisFlowStore {
	if ttl <= 0 {
		ttl = utils.DefaultBookingFlowTTL
	}
	return &RedisFlowStore{
		client: client,
		docs:   utils.NewJSONStore[models.BookingFlow](client, utils.BookingFlowPrefix, ttl),
	}
}

func (s *RedisFlowStore) Get(ctx context.Context, id string) (*models.BookingFlow, error) {
	flow, err := s.docs.Get(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, ErrFlowNotFound
	}
	return flow, err
}

func (s *RedisFlowStore) Put(ctx context.Context, flow *models.BookingFlow) error {
	flow.UpdatedAt = time.Now()
	return s.docs.Put(ctx, flow.ID, flow)
}

func (s *RedisFlowStore) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}

func lockKey(id string) string {
	return utils.BookingFlowPrefix + id + ":checkout"
}

func (s *RedisFlowStore) AcquireCheckout(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(id), time.Now().Unix(), checkoutLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock checkout for flow %s: %w", id, err)
	}
	return ok, nil
}

func (s *RedisFlowStore) ReleaseCheckout(ctx context.Context, id string) error {
	return s.client.Del(ctx, lockKey(id)).Err()
}
