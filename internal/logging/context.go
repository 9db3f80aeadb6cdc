package logging

import "context"

type attrsKey struct{}

// ContextWith returns a context whose log records carry the given key-value
// pairs in addition to any already attached.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := contextAttrs(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

func contextAttrs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]any)
	return attrs
}
