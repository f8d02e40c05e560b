package api

import (
	"context"

	"github.com/rpupo63/blog-platform-backend/auth"
)

type keyType string

const (
	identityKey  keyType = "identity"
	requestIDKey keyType = "requestID"
)

// ctxWithIdentity adds the verified caller to the context
func ctxWithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFromContext retrieves the verified caller from the context
func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

func ctxWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
