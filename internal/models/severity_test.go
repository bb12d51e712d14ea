package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityWarning.Rank())
	assert.Greater(t, SeverityWarning.Rank(), SeverityInfo.Rank())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, ParseSeverity("critical"))
	assert.Equal(t, SeverityWarning, ParseSeverity("warning"))
	assert.Equal(t, SeverityInfo, ParseSeverity("info"))

	// 未知值回落为 info
	assert.Equal(t, SeverityInfo, ParseSeverity(""))
	assert.Equal(t, SeverityInfo, ParseSeverity("fatal"))
}

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityCritical.Valid())
	assert.True(t, SeverityWarning.Valid())
	assert.True(t, SeverityInfo.Valid())
	assert.False(t, Severity("fatal").Valid())
}

func TestParseGatewayTrap(t *testing.T) {
	values := map[string]interface{}{
		"data": `{"source_ip":"10.0.0.1","payload":{"alert_code":8},"timestamp":1756100000}`,
	}

	trap, err := ParseGatewayTrap(values)
	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.1", trap.SourceIP)
	assert.Equal(t, float64(8), trap.Payload["alert_code"])
}

func TestParseGatewayTrap_Invalid(t *testing.T) {
	_, err := ParseGatewayTrap(map[string]interface{}{"other": 1})
	assert.Error(t, err)

	_, err = ParseGatewayTrap(map[string]interface{}{"data": "{broken"})
	assert.Error(t, err)
}
