// Package session orchestrates one application session on a kiosk
// platform.
//
// The Controller owns the application state machine, discovers the
// platform's peripherals, instantiates one component per peripheral
// (linking composites), routes inbound frames to the right component,
// and keeps the application state synchronized with peripheral
// readiness.
//
// # Lifecycle
//
// Connect builds the platform connection, authenticates, opens the
// socket and runs initialization: the environment is queried (adopting
// the platform-reported device identifier when none was configured),
// the component inventory is fetched and classified, and every
// discovered component's status is queried once.
//
// # State Synchronization
//
// The sync policy runs after every relevant state or component change.
// While the application is online, it requests AVAILABLE once every
// required component is ready and UNAVAILABLE as soon as one is not.
// While offline, it requests UNAVAILABLE. State-change requests are
// serialized: while one is outstanding the policy is a no-op.
//
// # Command API
//
// The Controller implements the narrow command surface components
// depend on (enable, disable, cancel, query, setup, send) plus the
// platform-level operations (environment, component inventory, state
// requests, application transfer, announcements). Each command is one
// request/response round trip through the connection.
package session
