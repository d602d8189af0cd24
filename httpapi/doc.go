// Package httpapi exposes the lending system over REST. It owns request
// parsing and validation, the Bearer-token middleware, and the mapping
// from the domain error taxonomy to HTTP status codes; all state
// transitions are delegated to the services.
package httpapi
