// Package connection owns the duplex socket to the CUSS2 platform.
//
// A Connection is created by Connect, which:
//
//  1. Normalizes the base URL and derives the socket URL
//     (http→ws, https→wss, path suffix /platform/subscribe)
//  2. Exchanges client credentials for a bearer token and starts a
//     refresher that re-authorizes one second before each expiry
//  3. Dials the websocket, retrying the whole open attempt with
//     exponential backoff and jitter. Authentication failures are
//     never retried and surface immediately
//
// # Retry Strategy
//
// Open attempts back off exponentially:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Bounded by a configurable attempt ceiling
//
// Jitter (a fraction of the base delay) prevents thundering herd:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// A close with the normal code (1000) is operator-initiated and never
// retried.
//
// # Correlation
//
// Inbound frames carrying a request identifier resolve the matching
// SendAndGetResponse waiter; each waiter is removed after exactly one
// resolution. Frames without an identifier, or with no waiter, are
// unsolicited and reach only the OnMessage callback.
package connection
