package decoder

import (
	"testing"

	"trapwatch/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveEntry_StandardCode(t *testing.T) {
	result := ResolveEntry(&models.AlertEntry{StdCode: 8})
	assert.Equal(t, "Paper Jam", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
	assert.False(t, result.Ignore)

	result = ResolveEntry(&models.AlertEntry{StdCode: 1104})
	assert.Equal(t, "Toner Low", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestResolveEntry_VendorCodeOverridesStandard(t *testing.T) {
	// 厂商码比标准码更具体
	result := ResolveEntry(&models.AlertEntry{StdCode: 2, VendorCode: 2011, HasVendorCode: true})
	assert.Equal(t, "Replace Toner Cartridge", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestResolveEntry_VendorIgnoreShortCircuits(t *testing.T) {
	// ignore 条目不携带任何信号，标准码的结果也被丢弃
	result := ResolveEntry(&models.AlertEntry{StdCode: 8, VendorCode: 0, HasVendorCode: true})
	assert.True(t, result.Ignore)
	assert.Empty(t, result.Message)

	// 厂商码字段缺失时不走厂商表，零值不等于 Ready
	result = ResolveEntry(&models.AlertEntry{StdCode: 8})
	assert.False(t, result.Ignore)
	assert.Equal(t, "Paper Jam", result.Message)
}

func TestResolveEntry_DescriptionReplacesPlaceholder(t *testing.T) {
	result := ResolveEntry(&models.AlertEntry{
		StdCode:     1, // "Other Alert" 占位
		Description: "Tray 3 lift motor failure",
	})
	assert.Equal(t, "Tray 3 lift motor failure", result.Message)
}

func TestResolveEntry_DescriptionDoesNotReplaceSpecific(t *testing.T) {
	result := ResolveEntry(&models.AlertEntry{
		StdCode:     8,
		Description: "some free text",
	})
	assert.Equal(t, "Paper Jam", result.Message)
}

func TestResolveEntry_DescriptionCounterSuffixStripped(t *testing.T) {
	result := ResolveEntry(&models.AlertEntry{
		Description: "Door Open [4]",
	})
	assert.Equal(t, "Door Open", result.Message)
}

func TestResolveEntry_DescriptionRejected(t *testing.T) {
	// 过短
	result := ResolveEntry(&models.AlertEntry{Description: "err"})
	assert.Empty(t, result.Message)

	// 十六进制转储
	result = ResolveEntry(&models.AlertEntry{Description: "0x4a 0x61 0x6d 0x21"})
	assert.Empty(t, result.Message)
}

func TestResolveEntry_AlertGroupFallback(t *testing.T) {
	// 只有分组上下文时采用分组的消息和级别
	result := ResolveEntry(&models.AlertEntry{AlertGroup: 11})
	assert.Equal(t, "Supply Problem", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestResolveEntry_AlertGroupReplacesPlaceholder(t *testing.T) {
	// 码 2 只给出 "Device Alert" 占位和 info 级别，分组可补足两者
	result := ResolveEntry(&models.AlertEntry{StdCode: 2, AlertGroup: 10})
	assert.Equal(t, "Print Engine Problem", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestResolveEntry_Empty(t *testing.T) {
	result := ResolveEntry(&models.AlertEntry{})
	assert.Empty(t, result.Message)
	assert.Equal(t, models.SeverityInfo, result.Severity)
	assert.False(t, result.Ignore)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Paper Jam", CleanDescription("  Paper Jam [12]  "))
	assert.Equal(t, "Cover Open", CleanDescription("Cover Open"))
}
