// Package engine is the execution entry point for merged schemas. It runs
// a request against the merged schema, gathers delegation errors recorded
// during execution, and produces one transport-ready response.
package engine

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"stitchql/internal/delegate"
	"stitchql/internal/logging"
	"stitchql/internal/merge"
)

// Request is one GraphQL request against the merged schema.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Response is the result of executing a request. Errors carry absolute
// response paths; delegation errors appear after the executor's own errors,
// in arrival order.
type Response struct {
	Data   interface{}           `json:"data"`
	Errors []delegate.FieldError `json:"errors,omitempty"`
}

// HasErrors reports whether the response carries any errors.
func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}

// Execute runs a request to completion. Delegated fields that fail resolve
// to null and report through the error list; a partial result and errors
// can both be present. Cancelling ctx stops outstanding delegations and
// reports them as cancellation errors at their paths while the rest of
// the response still completes.
func Execute(ctx context.Context, schema *merge.Schema, req Request) *Response {
	if ctx == nil {
		ctx = context.Background()
	}
	collector := delegate.NewCollector()

	// graphql-go stops completing fields once its context is cancelled.
	// The executor runs on a detached context; dispatches recover the
	// caller's cancellation through the stored value.
	execCtx := delegate.WithCallerContext(context.WithoutCancel(ctx), ctx)
	execCtx = delegate.WithCollector(execCtx, collector)

	result := graphql.Do(graphql.Params{
		Schema:         schema.Schema(),
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        execCtx,
	})

	resp := &Response{Data: result.Data}
	for _, formatted := range result.Errors {
		resp.Errors = append(resp.Errors, delegate.FieldError{
			Message: formatted.Message,
			Path:    formatted.Path,
		})
	}
	resp.Errors = append(resp.Errors, collector.Errors()...)

	if resp.HasErrors() {
		logging.FromContext(ctx).Debug("request completed with errors",
			slog.Int("error_count", len(resp.Errors)),
		)
	}
	return resp
}
