// Package messaging is a small broker-agnostic publish/consume layer with
// NATS, NSQ, Kafka and in-process drivers.
//
// Consumers run until their context is cancelled. Handlers may ack or nack
// explicitly; with auto-ack enabled the outcome of the handler decides.
package messaging
