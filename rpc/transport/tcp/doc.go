// Package tcp implements the TCP client transport. Endpoints are host:port
// pairs; connection pooling, framing and request correlation come from the
// base package.
package tcp
