// Package routing implements the in-process message fabric between local
// gRPC streaming calls.
//
// # Overview
//
// The routing package never touches the bus. It multiplexes two kinds of
// local flows, both identified by string routes:
//
//   - Push: one-way fan-out. Every registration on a route receives every
//     pushed event; the push ack reports how many registrations it was
//     written to.
//   - Request: two-way correlated dispatch. One registration is selected per
//     request according to the route's policy; the response travels back to
//     the requester's unary call via a (route, requestId) correlation.
//
// # Tables
//
// The Engine owns three tables:
//
//   - pushTable: route -> push registrations, in registration order
//   - requestTable: route -> request group (policy, registrations, counters)
//   - pendingRequests: (route, requestId) -> in-flight request
//
// Entries exist exactly while they are live: a route with no registrations
// has no table entry, and a group is destroyed the moment it empties.
//
// # Policies
//
// All registrations in a group share one policy, fixed by the first
// registration. SINGLE additionally caps the group at one registration.
// FIRST and LAST pick the ends, NEXT rotates a per-group cursor (normalized
// back into bounds whenever a registration leaves), RANDOM picks uniformly.
//
// # Request ids
//
// Each group issues requestIds from a 32-bit counter starting at 1; the
// counter wraps past the maximum back to 1 and never issues 0.
//
// # Cancellation
//
// A departing request registration cascade-cancels every pending request
// bound to it; the requester's unary call fails with Cancelled. A departed
// requester turns a late response into a dropped ack with routing count 0.
package routing
