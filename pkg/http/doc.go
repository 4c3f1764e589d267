// Package http provides the HTTP client used by the native backend.
//
// Client behaves like *http.Client for ordinary URLs and additionally routes
// lambda:// URLs to AWS Lambda:
//
//	lambda://<function-name>/<path>?<query-params>
//
// The request is converted to an API Gateway v2 proxy event, the function is
// invoked synchronously and its proxy response is turned back into an
// *http.Response. Base64-encoded response bodies are decoded.
package http
