package engine

import (
	"context"

	"github.com/google/uuid"
)

// ClientData carries transport-level request attributes into resolver
// context for logging and tracing.
type ClientData struct {
	RequestID  string
	RemoteAddr string
	UserAgent  string
}

type clientDataKey struct{}

// WithClientData stores client data in the context.
func WithClientData(ctx context.Context, data ClientData) context.Context {
	return context.WithValue(ctx, clientDataKey{}, data)
}

// ClientDataFrom retrieves client data from the context.
func ClientDataFrom(ctx context.Context) (ClientData, bool) {
	data, ok := ctx.Value(clientDataKey{}).(ClientData)
	return data, ok
}

// NewRequestID generates a unique request identifier.
func NewRequestID() string {
	return uuid.NewString()
}
