// Package http exposes the bluelist gateway over HTTP.
//
// Every route is mounted under a configurable context root
// (default "/v1/apps/bluelist"):
//
//	GET    {root}/items       list every Item
//	GET    {root}/item/{id}   fetch one Item as a one-element array
//	POST   {root}/item        create an Item from a JSON object
//	PUT    {root}/item/{id}   replace the fields of an Item
//	DELETE {root}/item/{id}   delete an Item
//	POST   {root}/signing     issue an S3 upload policy for fileName
//	GET    {root}/healthz     ping the document store
//	GET    {root}/public/*    static assets, when StaticDir is set
//
// GET / redirects to {root}/public.
//
// # Backend facade
//
// BackendMiddleware attaches a fresh bluelist.Backend to each request
// context. Handlers obtain it with BackendFromContext and chain their
// continuation on the returned Future, so a slow or failing store never
// blocks other requests. BackendTimeout bounds the wait.
//
// # Errors
//
// Failed backend calls answer 500 with
//
//	{"error":"backend_error","message":"<backend message>"}
//
// An unknown id answers 404 with the text "No such item found".
//
// # Usage
//
//	cfg := http.HandlerConfig{
//	    ContextRoot:    "/v1/apps/bluelist",
//	    StaticDir:      "./public",
//	    BackendTimeout: 30 * time.Second,
//	}
//	handler := http.NewHandler(&cfg, store, signer)
//	http.ListenAndServe(":5000", handler.Router())
package http
