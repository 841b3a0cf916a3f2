package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignupStore keeps registration sessions in Redis so they survive a
// process restart and expire on their own via key TTLs.
type SignupStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSignupStore(client *redis.Client, ttl time.Duration) *SignupStore {
	return &SignupStore{client: client, ttl: ttl}
}

func (s *SignupStore) Create(ctx context.Context, discordID string) error {
	return s.client.Set(ctx, s.key(discordID), "1", s.ttl).Err()
}

func (s *SignupStore) Active(ctx context.Context, discordID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(discordID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SignupStore) Delete(ctx context.Context, discordID string) error {
	return s.client.Del(ctx, s.key(discordID)).Err()
}

func (s *SignupStore) key(discordID string) string {
	return "signup:session:" + discordID
}
