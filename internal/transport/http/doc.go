// Package http exposes the market service over a chi router.
//
// Handlers stay thin: they parse and validate query parameters into a
// domain.ViewParams, call the service and render the result with go-chi/render.
// Failures go through the shared errors.ErrorHandler and are written as
// RFC 7807 problem details:
//
//	{
//	    "type": "/errors/data/no-data",
//	    "title": "Conflict",
//	    "status": 409,
//	    "detail": "no dataset source configured",
//	    "instance": "/api/market/macro",
//	    "error_code": "NO_DATA"
//	}
//
// Routes mounted under /api/market:
//
//	GET  /dataset             dataset status and statistics
//	POST /dataset/upload      multipart "file" replaces the active source
//	POST /dataset/reload      drop caches and read the source again
//	DELETE /dataset/upload    return to the configured source
//	GET  /cache               cache counters
//	GET  /macro               country view
//	GET  /benchmark           competitive benchmark
//	GET  /deep-dive           one brand by model (brand required)
//	GET  /yoy                 year over year comparison
//	GET  /summary             executive summary numbers
//	GET  /export/{format}     csv, xlsx or pdf download
//
// The view routes accept mode, years, dimension, top and brand.
//
// GET /api/events upgrades to a WebSocket that streams dataset events
// (see pkg/contracts/events).
package http
