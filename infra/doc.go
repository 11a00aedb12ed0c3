// Package infra holds the adapters behind the core interfaces: logging,
// metrics sinks, error monitoring and plan publishing over MQTT. Nothing in
// core imports these packages.
package infra
