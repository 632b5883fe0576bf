// Package comms bridges local gRPC calls onto the distributed event bus.
//
// # Overview
//
// Two event patterns cross the bridge:
//
//   - Channel: one-way multicast on a channel id. PublishChannel packs the
//     payload into its bus object form; ObserveChannel unpacks inbound
//     events and forwards them to the stream.
//   - Call-Return: a request with an unbounded number of streamed responses
//     over time. PublishCall forwards every inbound return to its stream;
//     ObserveCall hands each inbound call a fresh correlation id and parks a
//     response sink behind it until PublishComplete or the end of the
//     observing stream.
//
// # Reconfiguration
//
// The Manager owns the bus client. Configure stops it, merges the presence-
// tracked options into the live configuration, and starts a replacement.
// Stopping the client closes every bus-side event channel, which is the one
// signal the service loops need to end their streams cleanly - no error
// status, EOF only.
//
// # Correlation
//
// The bus-internal correlation id never leaves the gateway. Outward
// correlation ids are fresh UUIDs allocated per delivered call event; the
// sink registry maps them back to the bus-side responder functions.
package comms
