package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

const artifactHashKey = "extract:artifacts"

// RedisArtifactStore shares artifact records across replicas. Only the
// records live in redis; output files stay on the local disk of the replica
// that produced them, so a shared work dir is required in multi-replica
// deployments.
type RedisArtifactStore struct {
	client *redis.Client
}

func NewRedisArtifactStore(client *redis.Client) *RedisArtifactStore {
	return &RedisArtifactStore{client: client}
}

func (s *RedisArtifactStore) Put(ctx context.Context, artifact ports.Artifact) error {
	raw, err := json.Marshal(artifact)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, artifactHashKey, artifact.Token, raw).Err()
}

func (s *RedisArtifactStore) Claim(ctx context.Context, token string) (ports.Artifact, error) {
	raw, err := s.client.HGet(ctx, artifactHashKey, token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.Artifact{}, domain.ErrNotFound
		}
		return ports.Artifact{}, err
	}
	if err := s.client.HDel(ctx, artifactHashKey, token).Err(); err != nil {
		return ports.Artifact{}, err
	}
	var artifact ports.Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return ports.Artifact{}, err
	}
	return artifact, nil
}

func (s *RedisArtifactStore) SweepExpired(ctx context.Context, now time.Time) ([]ports.Artifact, error) {
	all, err := s.client.HGetAll(ctx, artifactHashKey).Result()
	if err != nil {
		return nil, err
	}
	var expired []ports.Artifact
	for token, raw := range all {
		var artifact ports.Artifact
		if err := json.Unmarshal([]byte(raw), &artifact); err != nil {
			_ = s.client.HDel(ctx, artifactHashKey, token).Err()
			continue
		}
		if now.After(artifact.ExpiresAt) {
			if err := s.client.HDel(ctx, artifactHashKey, token).Err(); err != nil {
				return expired, err
			}
			expired = append(expired, artifact)
		}
	}
	return expired, nil
}
