// ABOUTME: Event types flowing between the bus client and its observers
// ABOUTME: JSON envelopes for channel, call-return, and identity traffic

package bus

import (
	"github.com/flowpro/tnc-gateway/internal/codec"
)

// Identity is the agent identity advertised on the bus.
type Identity struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ChannelEvent is one inbound event on an observed channel.
type ChannelEvent struct {
	Id     string
	Object codec.Object
}

// CallEvent is one inbound call on an observed operation. Respond publishes
// a return to the caller's reply topic; returns from one observer keep their
// emission order. CorrelationId is the bus-internal correlation; the bridge
// allocates its own outward id.
type CallEvent struct {
	Operation     string
	Object        codec.Object
	SourceId      string
	CorrelationId string
	Respond       func(ReturnPayload) error
}

// ReturnPayload is the responder-side content of one return.
type ReturnPayload struct {
	Object codec.Object
	Error  string
}

// ReturnEvent is one inbound return for a published call.
type ReturnEvent struct {
	CorrelationId  string
	Object         codec.Object
	Error          string
	SourceId       string
	SequenceNumber int32
}

// AgentChange is the kind of an agent presence transition.
type AgentChange int

const (
	AgentJoin AgentChange = iota
	AgentLeave
)

// AgentEvent is one presence transition of a remote or local agent.
type AgentEvent struct {
	Identity Identity
	Change   AgentChange
	Local    bool
}

// callEnvelope is the JSON wire form of a call on the bus.
type callEnvelope struct {
	ObjectType    string `json:"objectType"`
	Value         string `json:"value"`
	SourceId      string `json:"sourceId,omitempty"`
	CorrelationId string `json:"correlationId"`
	ReplyTo       string `json:"replyTo"`
}

// returnEnvelope is the JSON wire form of a return on the bus.
type returnEnvelope struct {
	ObjectType     string `json:"objectType,omitempty"`
	Value          string `json:"value,omitempty"`
	Error          string `json:"error,omitempty"`
	SourceId       string `json:"sourceId,omitempty"`
	SequenceNumber int32  `json:"sequenceNumber"`
	CorrelationId  string `json:"correlationId"`
}
