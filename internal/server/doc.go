// Package server implements the HTTP gateway for the workflow client
//
// This package exposes workflow, workorder, result and profile operations as
// REST endpoints, and streams workorder status changes over WebSocket
package server
