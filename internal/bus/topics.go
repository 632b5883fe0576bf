// ABOUTME: Topic construction and id validation for the MQTT bus mapping
// ABOUTME: Namespaced topics for channel, call, return, identity, and raft traffic

package bus

import (
	"errors"
	"strings"
)

// ErrInvalidId rejects channel ids and operation names that are empty or
// would collide with MQTT topic syntax.
var ErrInvalidId = errors.New("id must be non-empty and must not contain NUL, '#', '+' or '/'")

// ValidateId checks a user-supplied channel id or call operation name.
// The forbidden characters are the MQTT topic level separator and wildcards.
func ValidateId(id string) error {
	if id == "" {
		return ErrInvalidId
	}
	if strings.ContainsAny(id, "\x00#+/") {
		return ErrInvalidId
	}
	return nil
}

// topics builds the namespaced topic names the client publishes and
// subscribes on.
type topics struct {
	namespace string
}

func (t topics) channel(id string) string {
	return t.namespace + "/channel/" + id
}

func (t topics) call(operation string) string {
	return t.namespace + "/call/" + operation
}

func (t topics) ret(correlationId string) string {
	return t.namespace + "/return/" + correlationId
}

func (t topics) identity(agentId string) string {
	return t.namespace + "/identity/" + agentId
}

func (t topics) identityFilter() string {
	return t.namespace + "/identity/+"
}

func (t topics) raft(cluster, nodeId string) string {
	return t.namespace + "/raft/" + cluster + "/" + nodeId
}

// identityIdFromTopic extracts the agent id from an identity topic name.
func (t topics) identityIdFromTopic(topic string) string {
	idx := strings.LastIndexByte(topic, '/')
	if idx < 0 {
		return ""
	}
	return topic[idx+1:]
}
