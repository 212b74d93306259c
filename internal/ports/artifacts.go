package ports

import (
	"context"
	"time"
)

// Artifact is one processed workbook staged for download.
type Artifact struct {
	Token     string    `json:"token"`
	Path      string    `json:"path"`
	Dir       string    `json:"dir"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ArtifactStore keeps artifacts until they are claimed or expire. Files on
// disk are owned by the caller; the store tracks only the records.
type ArtifactStore interface {
	Put(ctx context.Context, artifact Artifact) error
	// Claim removes and returns the artifact; a miss or an expired record
	// yields domain.ErrNotFound.
	Claim(ctx context.Context, token string) (Artifact, error)
	// SweepExpired removes records past their expiry and returns them so the
	// caller can delete the backing files.
	SweepExpired(ctx context.Context, now time.Time) ([]Artifact, error)
}
