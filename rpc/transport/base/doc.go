// Package base provides the connection handling shared by the socket based
// client transports (tcp, unix). Protocol specifics are injected through
// IClientConnector.
//
// Behaviour:
//
//   - Connect dials every endpoint in declaration order, optionally several
//     connections per endpoint, and fails only if no connection at all could
//     be established. Each dial is bounded by ClientConfig.ConnectTimeout.
//
//   - Send picks a connection round robin, writes one frame (bounded by
//     WriteTimeout) and waits for the response with the same request id
//     (bounded by ReadTimeout). Requests are not retried.
//
//   - One reader goroutine per connection correlates responses to waiting
//     requests through an xsync.MapOf keyed by request id. When a read fails,
//     all pending requests on that connection fail and the connection is
//     re-dialed once.
//
//   - Timing and error counts are recorded per transport type in Metrics
//     (rcrowley/go-metrics).
//
// Thread Safety:
//
//	All public methods are safe for concurrent use.
package base
