// Package wire defines the CUSS2 frame model and its JSON encoding.
//
// Every frame exchanged over the platform socket is a JSON object with a
// meta block and an optional payload block:
//
//	{
//	  "meta": {
//	    "requestID": "...",        // correlates request/response pairs
//	    "directive": "...",        // named operation (requests only)
//	    "componentID": 3,          // target peripheral (optional)
//	    "deviceID": "...",
//	    "oauthToken": "...",
//	    "messageCode": "OK",       // result code (responses)
//	    "componentState": "READY",
//	    "currentApplicationState": "AVAILABLE"
//	  },
//	  "payload": { ... }           // at most one operation body populated
//	}
//
// Two special inbound shapes bypass the meta/payload model:
//
//   - heartbeat: {"ping": <timestamp>}, answered with {"pong": <timestamp>}
//   - acknowledgement: {"ackCode": "..."}, no reply
//
// PeekFrameType classifies raw inbound bytes into one of these shapes
// without fully decoding them.
package wire
