// ABOUTME: Tests for topic construction and channel/operation id validation
// ABOUTME: Covers the forbidden character set and identity topic parsing

package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateId(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"plain id", "flowpro.icc.ftf.FtfStatus", false},
		{"dashes and dots", "a-b.c_d", false},
		{"empty", "", true},
		{"hash wildcard", "a#b", true},
		{"plus wildcard", "a+b", true},
		{"level separator", "a/b", true},
		{"nul byte", "a\x00b", true},
		{"spaces allowed", "FM agent status", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateId(tc.id)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidId)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	tp := topics{namespace: "tnc"}

	assert.Equal(t, "tnc/channel/status", tp.channel("status"))
	assert.Equal(t, "tnc/call/add", tp.call("add"))
	assert.Equal(t, "tnc/return/abc", tp.ret("abc"))
	assert.Equal(t, "tnc/identity/agent-1", tp.identity("agent-1"))
	assert.Equal(t, "tnc/identity/+", tp.identityFilter())
	assert.Equal(t, "tnc/raft/c1/n1", tp.raft("c1", "n1"))
}

func TestIdentityIdFromTopic(t *testing.T) {
	tp := topics{namespace: "tnc"}

	assert.Equal(t, "agent-1", tp.identityIdFromTopic("tnc/identity/agent-1"))
	assert.Equal(t, "", tp.identityIdFromTopic("no-separator"))
}
