// Package api defines the records exchanged with the workflow mediator bus,
// the topic names they travel on, and the gateway's request and response
// shapes
package api
