// Package bus carries request/response traffic between the workflow client
// and the mediator that owns the records.
//
// A request is published on its topic with a correlation ID. The responder
// answers on the topic's done or error channel for that ID. Two transports
// are provided: Local, built on in-process caravan topics, and Redis, built
// on Redis pub/sub
package bus
