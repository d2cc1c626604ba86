// Package client provides the workflow client facade. Each method maps a
// named operation onto a request on the mediator bus and decodes the single
// reply; the bus owns transport, timeouts and persistence
package client
