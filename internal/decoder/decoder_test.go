package decoder

import (
	"testing"

	"trapwatch/internal/codes"
	"trapwatch/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDecode_ExplicitCode(t *testing.T) {
	payload := map[string]interface{}{"alert_code": 8}

	result := Decode(payload)

	assert.Equal(t, "Paper Jam", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
	assert.False(t, result.Ignore)
}

func TestDecode_ExplicitCodeBeatsMessage(t *testing.T) {
	// 策略顺序即优先级：显式码先于显式消息
	payload := map[string]interface{}{
		"alert_code": 1101,
		"message":    "Cover open on unit 2",
	}

	result := Decode(payload)

	assert.Equal(t, "Toner Empty", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_PlaceholderCodeYieldsToMessage(t *testing.T) {
	// 码 1 只给出占位，后续策略的具体消息胜出
	payload := map[string]interface{}{
		"alert_code": 1,
		"message":    "Fuser unit overheating",
	}

	result := Decode(payload)

	assert.Equal(t, "Fuser unit overheating", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_ExplicitMessageKeepsText(t *testing.T) {
	// 显式消息原文保留，级别由文本模式推断
	payload := map[string]interface{}{"message": "Paper jam in tray 2"}

	result := Decode(payload)

	assert.Equal(t, "Paper jam in tray 2", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_GroupedVarbinds(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.18.1.1.7.1.1": 3,
			"1.3.6.1.2.1.43.18.1.1.7.1.2": 8,
		},
	}

	result := Decode(payload)

	// 两行仲裁，critical 的 Paper Jam 胜出
	assert.Equal(t, "Paper Jam", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_IgnoreOnlyFallsBack(t *testing.T) {
	// 仅有 ignore 厂商码（Ready）的报文不产生具体结果
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.18.1.1.9.1.1": 0,
		},
	}

	result := Decode(payload)

	assert.Equal(t, codes.GenericFallback, result.Message)
	assert.Equal(t, models.SeverityInfo, result.Severity)
	assert.False(t, result.Ignore)
}

func TestDecode_SupplyOverride(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.18.1.1.7.1.1": 8,
			"1.3.6.1.2.1.43.11.1.1.6.1.1": "Black Toner",
			"1.3.6.1.2.1.43.11.1.1.9.1.1": 3,
		},
	}

	result := Decode(payload)

	// 耗材读数 3% 覆盖报警码级联的结果
	assert.Equal(t, "Black Toner Empty (3%)", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_SupplyLowOverride(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.11.1.1.6.1.1": "Cyan Toner",
			"1.3.6.1.2.1.43.11.1.1.9.1.1": 15,
		},
	}

	result := Decode(payload)

	assert.Equal(t, "Cyan Toner Low (15%)", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestDecode_SupplyAboveThresholdNoOverride(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.18.1.1.7.1.1": 8,
			"1.3.6.1.2.1.43.11.1.1.6.1.1": "Black Toner",
			"1.3.6.1.2.1.43.11.1.1.9.1.1": 45,
		},
	}

	result := Decode(payload)

	assert.Equal(t, "Paper Jam", result.Message)
}

func TestDecode_PDUVarbinds(t *testing.T) {
	payload := map[string]interface{}{
		"pdu": map[string]interface{}{
			"varbinds": []interface{}{
				map[string]interface{}{"oid": "1.3.6.1.2.1.43.18.1.1.7.1.1", "value": 8},
			},
		},
	}

	result := Decode(payload)

	assert.Equal(t, "Paper Jam", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_FlatVarbindsDescription(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": []interface{}{
			map[string]interface{}{"oid": "1.3.6.1.2.1.43.18.1.1.8.1.1", "value": "Toner very low"},
		},
	}

	result := Decode(payload)

	// 描述列原文保留，级别由文本模式推断
	assert.Equal(t, "Toner very low", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestDecode_FlatVarbindsCorruptEntryIsolated(t *testing.T) {
	payload := map[string]interface{}{
		"varbinds": []interface{}{
			"not a varbind",
			map[string]interface{}{"oid": 12345},
			map[string]interface{}{"oid": "1.3.6.1.2.1.43.18.1.1.7.1.1", "value": 8},
		},
	}

	result := Decode(payload)

	assert.Equal(t, "Paper Jam", result.Message)
}

func TestDecode_PolledAlert(t *testing.T) {
	payload := map[string]interface{}{
		"alert": map[string]interface{}{"code": 3},
	}

	result := Decode(payload)

	assert.Equal(t, "Cover Open", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestDecode_PolledAlertIgnoredVendor(t *testing.T) {
	payload := map[string]interface{}{
		"alert": map[string]interface{}{"vendor_code": 2},
	}

	result := Decode(payload)

	assert.Equal(t, codes.GenericFallback, result.Message)
	assert.Equal(t, models.SeverityInfo, result.Severity)
}

func TestDecode_PolledAlertSupply(t *testing.T) {
	payload := map[string]interface{}{
		"alert": map[string]interface{}{
			"code": 24,
			"supply": map[string]interface{}{"name": "Cyan Toner", "level": 15},
		},
	}

	result := Decode(payload)

	assert.Equal(t, "Cyan Toner Low (15%)", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)
}

func TestDecode_RawTextCanonicalMessage(t *testing.T) {
	// 原始文本可能不可读，只取模式的规范消息
	payload := map[string]interface{}{"raw": "%%JAMMED%% code=0x23"}

	result := Decode(payload)

	assert.Equal(t, "Paper Jam", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_BareIdentifier(t *testing.T) {
	result := Decode(map[string]interface{}{"oid": ".1.3.6.1.6.3.1.1.5.3"})
	assert.Equal(t, "Network Link Down", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)

	result = Decode(map[string]interface{}{"oid": "1.3.6.1.2.1.43.18"})
	assert.Equal(t, "Printer Alert", result.Message)
	assert.Equal(t, models.SeverityInfo, result.Severity)
}

func TestDecode_SummaryString(t *testing.T) {
	// 厂商码比分组码更具体
	result := Decode(map[string]interface{}{"summary": "printer alerts: grp=11 vendor=2012"})
	assert.Equal(t, "Toner Low", result.Message)
	assert.Equal(t, models.SeverityWarning, result.Severity)

	result = Decode(map[string]interface{}{"summary": "status report grp=10"})
	assert.Equal(t, "Print Engine Problem", result.Message)
	assert.Equal(t, models.SeverityCritical, result.Severity)
}

func TestDecode_EmptyPayload(t *testing.T) {
	result := Decode(map[string]interface{}{})

	assert.Equal(t, codes.GenericFallback, result.Message)
	assert.Equal(t, models.SeverityInfo, result.Severity)
}

func TestDecode_Deterministic(t *testing.T) {
	// map 遍历顺序随机，解码结果必须与其无关
	payload := map[string]interface{}{
		"varbinds": map[string]interface{}{
			"1.3.6.1.2.1.43.18.1.1.7.1.1": 3,
			"1.3.6.1.2.1.43.18.1.1.8.1.1": "Cover open front",
			"1.3.6.1.2.1.43.18.1.1.7.1.2": 1104,
			"1.3.6.1.2.1.43.18.1.1.9.1.3": 2012,
			"1.3.6.1.2.1.43.11.1.1.6.1.1": "Black Toner",
			"1.3.6.1.2.1.43.11.1.1.9.1.1": 18,
		},
	}

	first := Decode(payload)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Decode(payload))
	}
}
