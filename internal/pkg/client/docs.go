// Package client implements the client side of the calc protocol.
//
// The client performs the following steps:
//	1. Connect a UDP socket to the server.
//	2. Send HELLO and wait up to the timeout (2 seconds by default) for a reply.
//	3. On timeout, send HELLO again, up to the attempt limit (3 by default). When every
//	   attempt times out the run fails with "no response after N attempts".
//	4. A NOT_OK reply fails the run with ErrSessionRejected. An ASSIGNMENT moves on.
//	5. Solve the assignment locally with the same operation table the server uses.
//	   Division by zero or an unknown operation fails the run without sending anything.
//	6. Send the RESULT once and wait once, up to the same timeout, for the verdict.
//	   The result is never resent: the server consumes the session on first receipt.
//	7. Report the verdict to the caller.
//
// The state reached by the last run is available from Client.State.
package client
