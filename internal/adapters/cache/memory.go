package cache

import (
	"context"
	"sync"
	"time"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
)

// MemoryArtifactStore is the default single-process store for download
// artifacts.
type MemoryArtifactStore struct {
	mu      sync.Mutex
	records map[string]ports.Artifact
}

func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{records: map[string]ports.Artifact{}}
}

func (s *MemoryArtifactStore) Put(_ context.Context, artifact ports.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[artifact.Token] = artifact
	return nil
}

func (s *MemoryArtifactStore) Claim(_ context.Context, token string) (ports.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.records[token]
	if !ok {
		return ports.Artifact{}, domain.ErrNotFound
	}
	delete(s.records, token)
	return artifact, nil
}

func (s *MemoryArtifactStore) SweepExpired(_ context.Context, now time.Time) ([]ports.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []ports.Artifact
	for token, artifact := range s.records {
		if now.After(artifact.ExpiresAt) {
			expired = append(expired, artifact)
			delete(s.records, token)
		}
	}
	return expired, nil
}

func (s *MemoryArtifactStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
