package delegate

import (
	"context"
	"log/slog"
	"time"

	"github.com/graphql-go/graphql"

	"stitchql/internal/logging"
	"stitchql/internal/observability"
)

// Result is the outcome of one dispatch: a value to project at the
// extension field (already unwrapped), errors re-pathed to the root of the
// originating query, or both when the nested execution was partial.
type Result struct {
	Value  interface{}
	Errors []FieldError
}

// Dispatcher executes delegation requests against target subschemas.
// Stateless apart from optional metrics; safe for concurrent use.
type Dispatcher struct {
	metrics *observability.DelegationMetrics
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(metrics *observability.DelegationMetrics) *Dispatcher {
	return &Dispatcher{metrics: metrics}
}

// Dispatch runs the request's operation against the target subschema as if
// it were a top-level request, under the caller's cancellable context
// (recovered from the executor context when the engine detached it). A
// cancelled caller yields a single cancellation error at the delegation
// path instead of hanging; the abandoned nested execution observes the
// same cancelled context. Dispatch never retries.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	ctx = callerContext(ctx)
	if err := ctx.Err(); err != nil {
		return d.cancelled(req, err)
	}

	doc, variables, err := buildDocument(req)
	if err != nil {
		return Result{Errors: []FieldError{{Message: err.Error(), Path: req.Path}}}
	}

	ctx, span := startDispatchSpan(ctx, req)
	start := time.Now()
	if d.metrics != nil {
		d.metrics.DispatchStarted(ctx, req.Subschema.Name())
		defer d.metrics.DispatchFinished(ctx, req.Subschema.Name())
	}

	resultCh := make(chan *graphql.Result, 1)
	go func() {
		resultCh <- graphql.Execute(graphql.ExecuteParams{
			Schema:  req.Subschema.Schema(),
			AST:     doc,
			Args:    variables,
			Context: ctx,
		})
	}()

	select {
	case <-ctx.Done():
		finishDispatchSpan(span, ctx.Err(), 1)
		if d.metrics != nil {
			d.metrics.RecordDispatch(ctx, time.Since(start), req.Subschema.Name(), true)
		}
		return d.cancelled(req, ctx.Err())
	case nested := <-resultCh:
		out := stitchResult(req, nested)
		var spanErr error
		if len(out.Errors) > 0 {
			spanErr = &DelegationError{Subschema: req.Subschema.Name(), Field: req.Field, Errors: out.Errors}
		}
		finishDispatchSpan(span, spanErr, len(out.Errors))
		if d.metrics != nil {
			d.metrics.RecordDispatch(ctx, time.Since(start), req.Subschema.Name(), len(out.Errors) > 0)
		}
		logging.FromContext(ctx).Debug("delegation dispatched",
			slog.String("subschema", req.Subschema.Name()),
			slog.String("field", req.Field),
			slog.Int("errors", len(out.Errors)),
		)
		return out
	}
}

func (d *Dispatcher) cancelled(req Request, cause error) Result {
	err := &CancellationError{Subschema: req.Subschema.Name(), Field: req.Field, Cause: cause}
	return Result{Errors: []FieldError{{Message: err.Error(), Path: req.Path}}}
}

// stitchResult extracts the delegated value from the nested result and
// re-paths its errors. The nested response is keyed by the target root
// field; that segment (and the override field, when one was used) is
// replaced by the path at which the delegation was invoked.
func stitchResult(req Request, nested *graphql.Result) Result {
	out := Result{}
	if nested == nil {
		return out
	}

	if data, ok := nested.Data.(map[string]interface{}); ok {
		value := data[req.Field]
		if req.Via != "" {
			if wrapper, ok := value.(map[string]interface{}); ok {
				value = wrapper[req.Via]
			} else {
				value = nil
			}
		}
		out.Value = value
	}

	for _, nestedErr := range nested.Errors {
		out.Errors = append(out.Errors, FieldError{
			Message: nestedErr.Message,
			Path:    rewritePath(req, nestedErr.Path),
		})
	}
	return out
}

func rewritePath(req Request, nestedPath []interface{}) []interface{} {
	rest := nestedPath
	if len(rest) > 0 && rest[0] == req.Field {
		rest = rest[1:]
		if req.Via != "" && len(rest) > 0 && rest[0] == req.Via {
			rest = rest[1:]
		}
	} else {
		// An error without a usable path is still anchored at the
		// delegation's own position.
		rest = nil
	}
	path := make([]interface{}, 0, len(req.Path)+len(rest))
	path = append(path, req.Path...)
	path = append(path, rest...)
	return path
}
