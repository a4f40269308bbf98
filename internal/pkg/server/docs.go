// Package server implements the server side of the calc protocol.
//
// The server performs the following steps:
// 	1. Binds a UDP socket and waits for datagrams, one at a time.
// 	2. Before every receive it sweeps the session store, evicting sessions that have
// 	   been idle for longer than the session ttl (10 seconds by default).
// 	3. A HELLO message with protocol 17 and version 1.0 creates a session with a random
// 	   identifier and a random assignment, which is sent back as an ASSIGNMENT.
// 	4. A RESULT carrying a live session identifier is verified against the stored
// 	   assignment. The server replies with an OK or NOT_OK verdict and closes the session
// 	   either way.
// 	5. A RESULT carrying an unknown identifier gets a NOT_OK verdict sent to wherever it
// 	   came from, and no session is touched.
// 	6. Anything else is dropped without a reply.
//
// The server never retries. Because the sweep runs between arrivals, an idle server
// evicts late unless a sweep interval is configured, in which case each receive is
// bounded by that interval.
package server
