// Package component models kiosk peripherals as small state machines.
//
// # State Machine
//
// A Component is either UNAVAILABLE or READY, driven exclusively by
// inbound platform frames via UpdateState. Leaving READY forces the
// enabled flag false. Every readiness transition and every status code
// change is reported through registered listeners.
//
// # Watchdog
//
// A required component that is not ready starts a watchdog: a
// self-rescheduling status query that runs until the component reports
// READY again. At most one watchdog runs per component; the session
// controller cancels all of them on teardown.
//
// # Commands
//
// Components never touch the socket. Every outward action goes through
// the narrow API interface supplied by the session controller, and each
// call increments the pending-call counter before dispatch and
// decrements it on completion or failure.
//
// The composite Printer aggregates a feeder and a dispenser discovered
// through the environment's linkage identifiers and derives a combined
// readiness and status from all three peripherals.
package component
