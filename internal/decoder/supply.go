package decoder

import (
	"fmt"

	"trapwatch/internal/models"
)

// 耗材余量阈值（百分比）
const (
	supplyEmptyThreshold = 5
	supplyLowThreshold   = 20
)

// EvaluateSupply 耗材阈值判定，独立于报警码级联。
// 命中时其结果覆盖同一次解码中报警码级联产生的任何结果。
// 余量为负（Printer-MIB 中表示 unknown/ok）或超出 100 时不触发。
func EvaluateSupply(name string, level int) (models.DecodeResult, bool) {
	if level < 0 || level > 100 {
		return models.DecodeResult{}, false
	}
	if name == "" {
		name = "Supply"
	}

	if level <= supplyEmptyThreshold {
		return models.DecodeResult{
			Message:  fmt.Sprintf("%s Empty (%d%%)", name, level),
			Severity: models.SeverityCritical,
		}, true
	}
	if level <= supplyLowThreshold {
		return models.DecodeResult{
			Message:  fmt.Sprintf("%s Low (%d%%)", name, level),
			Severity: models.SeverityWarning,
		}, true
	}

	return models.DecodeResult{}, false
}
