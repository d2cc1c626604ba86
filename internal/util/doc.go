// Package util provides small generic helpers shared by the gateway and the
// reference store
package util
