// Package api provides the REST API for hosts that want to read router state
// and send control commands without speaking the router protocol themselves.
//
// Endpoints:
//   - GET  /api/v1/snapshot         last successful snapshot
//   - POST /api/v1/refresh          run a polling cycle now
//   - GET  /api/v1/presence         every tracked device
//   - GET  /api/v1/switches         configured switches and their state
//   - GET  /api/v1/actions          available actions
//   - POST /api/v1/actions/{name}   run an action
//   - POST /api/v1/control          send a raw router call
//   - GET  /api/v1/status           service, session and polling counters
//   - POST /api/v1/service          start, stop or restart polling
//   - GET  /api/v1/health           health checks
//
// Prometheus metrics are mounted on the same listener when enabled.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "router_error",
//	    "message": "Human-readable error message",
//	    "details": { "error_code": "NETWORK_ERROR" }
//	  }
//	}
package api
