// ABOUTME: Message types shared by the four tnc-gateway gRPC services
// ABOUTME: Plain struct stand-ins for the shipped .proto contract

package tnc

import (
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// RouteEventAck acknowledges a routed event and reports how many
// registrations received it.
type RouteEventAck struct {
	RoutingCount int32
}

// EventAck acknowledges a bus-facing publish operation.
type EventAck struct{}

// PushRoute identifies a one-way local route to register on.
type PushRoute struct {
	Route string
}

// PushEvent is a one-way event on a local push route.
type PushEvent struct {
	Route string
	Data  *anypb.Any
}

// Policy selects how request events are dispatched over multiple
// registrations sharing a two-way route.
type Policy int32

const (
	PolicySingle Policy = iota
	PolicyFirst
	PolicyLast
	PolicyNext
	PolicyRandom
)

// String returns the proto enum name for the policy.
func (p Policy) String() string {
	switch p {
	case PolicySingle:
		return "SINGLE"
	case PolicyFirst:
		return "FIRST"
	case PolicyLast:
		return "LAST"
	case PolicyNext:
		return "NEXT"
	case PolicyRandom:
		return "RANDOM"
	default:
		return "UNKNOWN"
	}
}

// RequestRoute identifies a two-way local route and its dispatch policy.
type RequestRoute struct {
	Route  string
	Policy Policy
}

// RequestEvent is a correlated request on a two-way local route. RequestId
// is assigned by the routing engine; callers leave it zero.
type RequestEvent struct {
	Route     string
	RequestId uint32
	Data      *anypb.Any
}

// ResponseEvent answers a RequestEvent. Route and RequestId must match the
// dispatched request.
type ResponseEvent struct {
	Route     string
	RequestId uint32
	Data      *anypb.Any
}

// CommunicationOptions reconfigures the bus connection. All fields are
// optional; absent fields keep their prior or default values. Pointer fields
// preserve presence so an unset value is distinguishable from a zero value.
type CommunicationOptions struct {
	Url                 *string
	Namespace           *string
	AgentIdentityName   *string
	AgentIdentityId     *string
	Username            *string
	Password            *string
	TlsCert             *string
	TlsKey              *string
	VerifyServerCert     *bool
	NotFailFastIfOffline *bool
}

// ChannelEvent is a one-way multicast event on a bus channel.
type ChannelEvent struct {
	Id       string
	Data     *anypb.Any
	SourceId string
}

// ChannelFilter selects the channel id to observe.
type ChannelFilter struct {
	Id string
}

// CallEvent is a two-way request on a bus call operation. CorrelationId is
// assigned by the gateway when the event is delivered to a local observer;
// it is empty on the publishing side.
type CallEvent struct {
	Operation     string
	Data          *anypb.Any
	SourceId      string
	CorrelationId string
}

// CallFilter selects the call operation to observe.
type CallFilter struct {
	Operation string
}

// ReturnEvent carries one response to a CallEvent. A single call can yield
// many returns over time, from many responders. Exactly one of Data and
// Error is meaningful.
type ReturnEvent struct {
	CorrelationId  string
	Data           *anypb.Any
	Error          string
	SourceId       string
	SequenceNumber int32
}

// CompleteEvent signals that no further returns will be produced for the
// correlation by this responder.
type CompleteEvent struct {
	CorrelationId string
}

// AgentSelector matches remote agents for lifecycle tracking. At most one
// field is set; an empty selector matches all agents with the default role.
// An IdentityName delimited by '/' is compiled as a regular expression.
type AgentSelector struct {
	IdentityId   string
	IdentityName string
}

// AgentIdentity identifies one agent on the bus.
type AgentIdentity struct {
	Id   string
	Name string
	Role string
}

// LifecycleChange is the kind of an agent lifecycle transition.
type LifecycleChange int32

const (
	LifecycleJoin LifecycleChange = iota
	LifecycleLeave
)

// AgentLifecycleEvent reports one join or leave of a matching agent. Local
// is set when the event concerns this gateway's own identity.
type AgentLifecycleEvent struct {
	Identity *AgentIdentity
	Change   LifecycleChange
	Local    bool
}

// CreateOptions configures a new raft node.
type CreateOptions struct {
	Cluster             string
	ShouldCreateCluster bool
}

// CreateResponse carries the id of a freshly created raft node.
type CreateResponse struct {
	Id string
}

// NodeRef addresses an existing raft node by id.
type NodeRef struct {
	Id string
}

// RaftOperation is the kind of a replicated state machine input.
type RaftOperation int32

const (
	RaftPut RaftOperation = iota
	RaftDelete
)

// ProposeInput is one input to a raft node's replicated key-value state
// machine. Value follows google.protobuf.Value semantics: a legal value has
// exactly one variant set. An unset Value is treated as the null value.
type ProposeInput struct {
	Id        string
	Operation RaftOperation
	Key       string
	Value     *structpb.Value
}

// ConsensusAck acknowledges a consensus operation that carries no result.
type ConsensusAck struct{}

// State is a snapshot of a node's replicated key-value state machine.
type State struct {
	Entries map[string]*structpb.Value
}

// ClusterConfiguration lists the ids of the current cluster members.
type ClusterConfiguration struct {
	Ids []string
}
