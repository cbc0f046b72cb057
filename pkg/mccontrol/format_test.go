package mccontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorCodesToANSI(t *testing.T) {
	assert.Equal(t, "\033[31mAlice\033[0m", ColorCodesToANSI("§cAlice"))
	assert.Equal(t, "\033[31mAlice\033[0m", ColorCodesToANSI("§CAlice"))
	assert.Equal(t, "plain\033[0m", ColorCodesToANSI("plain"))
	assert.Equal(t, "a\033[0m\nb\033[0m", ColorCodesToANSI("a\nb"))
	assert.Equal(t, "unknown\033[0m", ColorCodesToANSI("§zunknown"))
	assert.Equal(t, "\033[1mbold\033[0m", ColorCodesToANSI("§lbold§r"))
}
