package mailfred

import (
	"context"
	"strings"
)

// Filter decides whether a route wants to handle a request, based on its
// header line.
type Filter interface {
	Matches(header string) bool
}

// AnyFilter matches every request; routes using it are typically placed
// last as a catch-all.
type AnyFilter struct{}

// Matches implements Filter.
func (AnyFilter) Matches(string) bool { return true }

// StartWith matches requests whose header starts with the given prefix.
type StartWith string

// Matches implements Filter.
func (p StartWith) Matches(header string) bool {
	return strings.HasPrefix(header, string(p))
}

// Exact matches requests whose header is exactly equal to the given
// string. Stands in for the original crate's bare string-literal filter,
// for the common case of a fixed-command router.
type Exact string

// Matches implements Filter.
func (e Exact) Matches(header string) bool {
	return header == string(e)
}

// Layer transforms a request on the way in and a result on the way out.
// Both methods have a zero-op default via BaseLayer, so a concrete layer
// need only override the one it cares about.
type Layer interface {
	MapRequest(req Request) Request
	MapResponse(result ResponseResult) ResponseResult
}

// BaseLayer is embedded by concrete layers to get pass-through defaults for
// whichever of MapRequest/MapResponse they don't override.
type BaseLayer struct{}

// MapRequest is the identity transform.
func (BaseLayer) MapRequest(req Request) Request { return req }

// MapResponse is the identity transform.
func (BaseLayer) MapResponse(result ResponseResult) ResponseResult { return result }

// LowercaseHeader lowercases the request header before routing, so route
// filters (and handlers) don't need to worry about the sender's casing.
type LowercaseHeader struct{ BaseLayer }

// MapRequest implements Layer.
func (LowercaseHeader) MapRequest(req Request) Request {
	req.Header = strings.ToLower(req.Header)
	return req
}

// ErrorHeader rewrites the response header to a fixed value whenever the
// result is an error, so the sender sees a predictable subject (e.g.
// "ERROR") instead of the default "Re: <request header>".
type ErrorHeader struct {
	BaseLayer
	Header string
}

// MapResponse implements Layer.
func (l ErrorHeader) MapResponse(result ResponseResult) ResponseResult {
	if result.IsErr() {
		result.Value.Header = l.Header
	}
	return result
}

type route[S any] struct {
	filter  Filter
	service Service[S]
}

// Router is a Service that dispatches to the first route whose filter
// matches, after running the request through every registered layer (in
// registration order) and running the chosen route's result back through
// every layer (in reverse order) — the same left-fold-in,
// right-fold-out shape as the original crate's router.
type Router[S any] struct {
	routes []route[S]
	layers []Layer
}

// NewRouter builds an empty Router.
func NewRouter[S any]() *Router[S] {
	return &Router[S]{}
}

// Route registers a route. Routes are tried in registration order; only
// the first match runs.
func (r *Router[S]) Route(filter Filter, service Service[S]) *Router[S] {
	r.routes = append(r.routes, route[S]{filter: filter, service: service})
	return r
}

// Layer registers a layer, applied around every route.
func (r *Router[S]) Layer(layer Layer) *Router[S] {
	r.layers = append(r.layers, layer)
	return r
}

// Call implements Service.
func (r *Router[S]) Call(ctx context.Context, state S, req Request) ResponseResult {
	for _, layer := range r.layers {
		req = layer.MapRequest(req)
	}

	result := r.dispatch(ctx, state, req)

	for i := len(r.layers) - 1; i >= 0; i-- {
		result = r.layers[i].MapResponse(result)
	}
	return result
}

func (r *Router[S]) dispatch(ctx context.Context, state S, req Request) ResponseResult {
	for _, rt := range r.routes {
		if rt.filter.Matches(req.Header) {
			return rt.service.Call(ctx, state, req)
		}
	}
	// No matching route is equivalent to Ok(None): silence, not an error
	// reply, since there's nothing to tell the sender that isn't already
	// implied by getting no response.
	return NoReply()
}
