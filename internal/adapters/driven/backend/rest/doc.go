// Package rest implements the backend ports over the RAG-chat REST API.
//
// Every call goes through one request pipeline: client-side rate limiting,
// a request id, the bearer token for authenticated calls and a single
// refresh-and-retry when the backend answers 401. Chat answers are read
// from a server-sent event stream (see QueryStream).
package rest
