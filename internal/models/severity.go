package models

// Severity 报警严重级别
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severityRanks 严重级别排序（info < warning < critical）
var severityRanks = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// Rank 返回严重级别的排序值（用于比较）
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Valid 检查严重级别是否合法
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// ParseSeverity 解析严重级别字符串（非法值回落到 info）
func ParseSeverity(s string) Severity {
	sev := Severity(s)
	if !sev.Valid() {
		return SeverityInfo
	}
	return sev
}
