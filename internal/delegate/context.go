package delegate

import "context"

type callerContextKey struct{}

// WithCallerContext stores the caller's cancellable context. The engine
// runs the top-level executor on a context detached from cancellation;
// dispatches recover the caller through this value so they still observe
// cancellation and deadlines.
func WithCallerContext(ctx, caller context.Context) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// callerContext returns the stored caller context, or ctx itself when the
// dispatch was not invoked through a detached executor.
func callerContext(ctx context.Context) context.Context {
	if caller, ok := ctx.Value(callerContextKey{}).(context.Context); ok {
		return caller
	}
	return ctx
}
