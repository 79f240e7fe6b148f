// Package auth carries the caller's user id from the request header to the
// handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
)

type userIDKey struct{}

// WithUserID returns a copy of ctx that carries userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the user id stored in ctx, or false when there is none.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// NewInterceptor rejects unary calls without the given header and stores its
// value in the context otherwise. The identity itself is trusted as-is; an
// upstream gateway is expected to authenticate it.
func NewInterceptor(header string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			userID := strings.TrimSpace(req.Header().Get(header))
			if userID == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("missing %s header", header))
			}
			return next(WithUserID(ctx, userID), req)
		}
	}
}

// ErrNoUser is returned by RequireUserID when the context has no user id.
var ErrNoUser = errors.New("no user in context")

// RequireUserID is UserID as a Connect error.
func RequireUserID(ctx context.Context) (string, error) {
	userID, ok := UserID(ctx)
	if !ok {
		return "", connect.NewError(connect.CodeUnauthenticated, ErrNoUser)
	}
	return userID, nil
}
