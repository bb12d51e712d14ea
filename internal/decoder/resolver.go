package decoder

import (
	"regexp"

	"trapwatch/internal/codes"
	"trapwatch/internal/models"
)

// counterSuffixPattern 描述文本尾部的计数器后缀，如 "Paper Jam [3]"
var counterSuffixPattern = regexp.MustCompile(`\s*\[\d+\]\s*$`)

// hexDumpPattern 原始十六进制转储形状的文本（不可作为人读消息）
var hexDumpPattern = regexp.MustCompile(`^(?:0x)?[0-9A-Fa-f]{2}(?:[ :\-]?[0-9A-Fa-f]{2})+$`)

// ResolveEntry 将一条报警表条目解析为候选结果。
// 固定优先级级联：标准码 → 厂商码 → 自由文本描述 → 分组兜底。
// 每一步只在掌握比已有结果更具体的信息时覆盖。
func ResolveEntry(entry *models.AlertEntry) models.DecodeResult {
	result := models.DecodeResult{Severity: models.SeverityInfo}

	// 1. 标准码
	if msg, ok := codes.StandardAlertCodes[entry.StdCode]; ok {
		result.Message = msg
		result.Severity = codes.SeverityForStandardCode(entry.StdCode)
	}

	// 2. 厂商码：ignore 条目直接短路，整条不携带任何信号。
	// 厂商码 0 是合法条目（Ready），缺失与否看 HasVendorCode。
	if entry.HasVendorCode {
		if vendor, ok := codes.VendorAlertCodes[entry.VendorCode]; ok {
			if vendor.Ignore {
				return models.DecodeResult{Ignore: true}
			}
			result.Message = vendor.Message
			result.Severity = vendor.Severity
		}
	}

	// 3. 自由文本描述：只在当前消息为空或占位时采用
	if desc := CleanDescription(entry.Description); usableDescription(desc) && isPlaceholder(result.Message) {
		result.Message = desc
	}

	// 4. 分组兜底：只补充消息；级别仅在仍为 info 时采纳，绝不降级
	if isPlaceholder(result.Message) {
		if group, ok := codes.AlertGroupContext[entry.AlertGroup]; ok {
			result.Message = group.Message
			if result.Severity == models.SeverityInfo {
				result.Severity = group.Severity
			}
		}
	}

	return result
}

// CleanDescription 清理描述文本：去除首尾空白与尾部计数器后缀
func CleanDescription(desc string) string {
	return counterSuffixPattern.ReplaceAllString(toText(desc), "")
}

// usableDescription 描述长度超过 3 且不是十六进制转储时才可作为消息
func usableDescription(desc string) bool {
	return len(desc) > 3 && !hexDumpPattern.MatchString(desc)
}

// isPlaceholder 消息为空或为两个已知占位之一
func isPlaceholder(msg string) bool {
	return msg == "" || msg == codes.PlaceholderOther || msg == codes.PlaceholderDevice
}
