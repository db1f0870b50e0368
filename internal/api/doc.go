// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the auth and task services to the JSON
// REST surface under /api.
package api
