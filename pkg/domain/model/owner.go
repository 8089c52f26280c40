package model

import (
	"context"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// OwnerID identifies the caller that owns a collection of artifacts. It is
// used as a storage path segment, so it is restricted to a safe alphabet.
type OwnerID string

var ownerIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Validate checks if the owner ID is safe to use as a path segment
func (id OwnerID) Validate() error {
	if !ownerIDPattern.MatchString(string(id)) || id == "." || id == ".." {
		return goerr.Wrap(ErrInvalidOwner, "owner ID must match [A-Za-z0-9._-]{1,128}", goerr.V(OwnerIDKey, string(id)))
	}
	return nil
}

// String returns the string representation of the owner ID
func (id OwnerID) String() string {
	return string(id)
}

type ownerCtxKey struct{}

// ContextWithOwner returns a context carrying the owner ID
func ContextWithOwner(ctx context.Context, owner OwnerID) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// OwnerFromContext returns the owner ID stored in ctx
func OwnerFromContext(ctx context.Context) (OwnerID, error) {
	owner, ok := ctx.Value(ownerCtxKey{}).(OwnerID)
	if !ok || owner == "" {
		return "", goerr.Wrap(ErrInvalidOwner, "owner not found in context")
	}
	return owner, nil
}
