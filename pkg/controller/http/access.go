package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/utils/errutil"
	"github.com/mootai/moot/pkg/utils/logging"
)

// DefaultOwner owns every artifact when access is open
const DefaultOwner model.OwnerID = "default"

// OwnerResolver identifies the owner of a request
type OwnerResolver func(r *http.Request) (model.OwnerID, error)

// FixedOwner attributes every request to owner
func FixedOwner(owner model.OwnerID) OwnerResolver {
	return func(*http.Request) (model.OwnerID, error) {
		return owner, nil
	}
}

// HeaderOwner reads the owner from a header set by a trusted front proxy
func HeaderOwner(header string) OwnerResolver {
	return func(r *http.Request) (model.OwnerID, error) {
		owner := model.OwnerID(strings.TrimSpace(r.Header.Get(header)))
		if owner == "" {
			return "", goerr.Wrap(model.ErrInvalidOwner, "owner header is missing", goerr.V("header", header))
		}
		return owner, nil
	}
}

func ownerMiddleware(resolve OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := resolve(r)
			if err == nil {
				err = owner.Validate()
			}
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized, "未认证: "+err.Error())
				return
			}

			ctx := model.ContextWithOwner(r.Context(), owner)
			ctx = logging.With(ctx, logging.From(ctx).With("owner", owner.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
