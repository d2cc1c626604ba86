// Package store provides an in-memory responder for every workflow topic.
//
// A Store keeps workflows, workorders, results and the current user profile
// in memory and answers the requests a workflow client sends over the bus.
// It is the reference collaborator used by the gateway when no external
// mediator is attached, and by the end-to-end tests
package store
