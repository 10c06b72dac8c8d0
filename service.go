package mailfred

import "context"

// Service is anything that can answer a Request against some shared state
// S. S is typically a small struct of dependencies (a database handle, an
// app-specific client) a handler closes over; stateless services use
// struct{}. This is the module's one generic: Rust's service trait is
// parameterized the same way, over the connector's State type.
type Service[S any] interface {
	Call(ctx context.Context, state S, req Request) ResponseResult
}

// RawHandlerFunc is a handler that already speaks in ResponseResult. Most
// handlers are better expressed with HandlerFunc and Handle, below, which
// adapt a plain (value, error) return.
type RawHandlerFunc[S any] func(ctx context.Context, state S, req Request) ResponseResult

// Call implements Service.
func (f RawHandlerFunc[S]) Call(ctx context.Context, state S, req Request) ResponseResult {
	return f(ctx, state, req)
}

// HandlerFunc is the shape most handlers are written against: return
// whatever value naturally represents the result (a string, an
// AttachmentPart, a Response, a pointer for Option<T>, ...) plus an error,
// and let ToResponseResult do the conversion.
type HandlerFunc[S any] func(ctx context.Context, state S, req Request) (any, error)

// Handle adapts a HandlerFunc into a Service by routing its return values
// through ToResponseResult.
func Handle[S any](fn HandlerFunc[S]) Service[S] {
	return RawHandlerFunc[S](func(ctx context.Context, state S, req Request) ResponseResult {
		value, err := fn(ctx, state, req)
		return ToResponseResult(value, err)
	})
}
