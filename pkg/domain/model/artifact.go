package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UnnamedArtifact is used when an upload carries no file name
const UnnamedArtifact = "unnamed"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// StoredArtifact is one uploaded case document. Its physical name is
// "<uniquePrefix>_<sanitizedOriginalName>". Artifacts are never mutated after
// they are written.
type StoredArtifact struct {
	Owner        OwnerID
	PhysicalName string
	// OriginalName is the sanitized original name recovered from the
	// physical name (the part after the first underscore).
	OriginalName string
	Size         int64
	CreatedAt    time.Time
}

// Sanitize replaces every character outside [A-Za-z0-9._-] with '_'.
// Sanitize is idempotent.
func Sanitize(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// NewArtifactPrefix returns a globally unique prefix. UUIDv7 keeps prefixes
// ordered by creation time, which the resolver relies on for tie-breaking.
func NewArtifactPrefix() string {
	return uuid.Must(uuid.NewV7()).String()
}

// PhysicalName builds the stored name for an uploaded file
func PhysicalName(prefix, originalName string) string {
	if originalName == "" {
		originalName = UnnamedArtifact
	}
	return prefix + "_" + Sanitize(originalName)
}

// SplitPhysicalName splits at the first underscore. A name without an
// underscore has no prefix and is its own suffix.
func SplitPhysicalName(physical string) (prefix, suffix string) {
	idx := strings.Index(physical, "_")
	if idx < 0 {
		return "", physical
	}
	return physical[:idx], physical[idx+1:]
}

// NewStoredArtifact builds a StoredArtifact from a physical name
func NewStoredArtifact(owner OwnerID, physical string, size int64, createdAt time.Time) *StoredArtifact {
	_, suffix := SplitPhysicalName(physical)
	return &StoredArtifact{
		Owner:        owner,
		PhysicalName: physical,
		OriginalName: suffix,
		Size:         size,
		CreatedAt:    createdAt,
	}
}

// MatchRank orders how closely a requested name refers to an artifact
type MatchRank int

const (
	MatchNone MatchRank = iota
	// MatchSuffix: the stored suffix only ends with the raw request
	MatchSuffix
	// MatchExact: the raw or sanitized request equals the stored suffix
	MatchExact
)

// Rank reports how a caller-requested logical name refers to this artifact.
func (a *StoredArtifact) Rank(requested string) MatchRank {
	if requested == "" {
		return MatchNone
	}
	suffix := a.OriginalName
	switch {
	case requested == suffix || Sanitize(requested) == suffix:
		return MatchExact
	case strings.HasSuffix(suffix, requested):
		return MatchSuffix
	default:
		return MatchNone
	}
}

// Matches reports whether a caller-requested logical name refers to this
// artifact: the sanitized request equals the suffix, the suffix ends with the
// raw request, or the raw request equals the suffix.
func (a *StoredArtifact) Matches(requested string) bool {
	return a.Rank(requested) != MatchNone
}

// ValidatePhysicalName rejects names that could escape the owner directory
func ValidatePhysicalName(physical string) error {
	if physical == "" || physical == "." || physical == ".." || Sanitize(physical) != physical {
		return goerr.Wrap(ErrInvalidArtifact, "physical name must match [A-Za-z0-9._-]+", goerr.V(ArtifactKey, physical))
	}
	return nil
}
