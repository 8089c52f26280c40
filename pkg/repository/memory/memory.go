package memory

import (
	"github.com/mootai/moot/pkg/domain/model"
)

func copyArtifact(a *model.StoredArtifact) *model.StoredArtifact {
	copied := *a
	return &copied
}

// newer reports whether a was written after b. Physical names carry a
// time-ordered prefix, so they break CreatedAt ties.
func newer(a, b *model.StoredArtifact) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.PhysicalName > b.PhysicalName
}
