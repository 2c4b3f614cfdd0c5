// Package driving provides interfaces for application entry points
// (primary/inbound ports) implemented by the core services and consumed
// by the HTTP API and CLI adapters.
package driving
