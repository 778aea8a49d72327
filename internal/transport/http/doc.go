// Package http implements the HTTP handlers of the VGPulse web service.
// Handlers parse and validate query parameters, call the service layer and
// render the result.
//
// Successful responses share one envelope:
//
//	{"status": "success", "data": {...}, "count": 9}
//
// A result computed over no data carries "empty": true instead of failing.
// Errors are rendered as RFC 7807 problem documents by the shared
// errors.ErrorHandler after services.ToAPIError has mapped pipeline errors
// onto API errors.
//
// Routes mounted under /api:
//
//	GET  /market-share      manufacturer share per year
//	GET  /distribution      density curves (dimension, mode, category)
//	GET  /categories        top categories of a dimension
//	GET  /forecast          actual and projected shares
//	GET  /dashboard         all of the above from one dataset read
//	GET  /dataset/summary   dataset and cache statistics
//	POST /dataset/reload    drop the cached dataset and load it again
//	GET  /export            CSV or XLSX download
//	GET  /health            health, readiness and liveness
package http
