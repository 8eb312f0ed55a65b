package instrument

import (
	"context"

	"github.com/google/uuid"
)

// CorrelationHeader is the HTTP header and message header carrying the id.
const CorrelationHeader = "X-Correlation-ID"

type correlationKey struct{}

// SetCorrelationID stores id in ctx.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// EnsureCorrelationID returns ctx carrying id, or a fresh id when id is empty.
func EnsureCorrelationID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = uuid.NewString()
	}
	return SetCorrelationID(ctx, id), id
}
