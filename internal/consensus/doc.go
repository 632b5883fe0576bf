// Package consensus multiplexes named raft nodes behind the ConsensusService.
//
// # Connection state machine
//
// Every node moves through a strict life cycle:
//
//	created --connect--> connecting --success--> connected
//	          connecting --failure--> created
//	connected --disconnect--> disconnecting --> disconnected (terminal)
//	connected --stop--> stopping --> stopped (reconnectable)
//
// Transitional states reject overlapping operations; operations on unknown
// ids are caller bugs. Disconnect deletes the node's persisted database;
// Stop retains it so the same id can rejoin with its log intact.
//
// # State machine values
//
// Replicated values follow google.protobuf.Value semantics: every legal
// value carries exactly one variant tag, and an unset input value is
// replicated as the null value.
package consensus
