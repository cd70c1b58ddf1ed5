package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitelistGateCaseFolding(t *testing.T) {
	gate := NewWhitelistGate([]string{"TrustedUser", " spaced_name ", ""})

	assert.Equal(t, 2, gate.Len())
	assert.True(t, gate.IsExempt("trusteduser"))
	assert.True(t, gate.IsExempt("TRUSTEDUSER"))
	assert.True(t, gate.IsExempt("spaced_name"))
	assert.False(t, gate.IsExempt("someone_else"))
	assert.False(t, gate.IsExempt(""))
}

func TestWhitelistGateNilSafe(t *testing.T) {
	var gate *WhitelistGate
	assert.False(t, gate.IsExempt("anyone"))
	assert.Equal(t, 0, gate.Len())
}
