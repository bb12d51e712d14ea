package codes

import (
	"regexp"

	"trapwatch/internal/models"
)

// 本包为只读参照数据：进程启动时初始化一次，解码器按引用使用，不复制、不修改。

// GenericFallback 所有解码策略都未命中时的兜底消息
const GenericFallback = "SNMP Alert"

// 通用占位消息（标准码 1/2 的文本，视为"无具体信息"，可被后续步骤覆盖）
const (
	PlaceholderOther  = "Other Alert"
	PlaceholderDevice = "Device Alert"
)

// IsGenericMessage 判断消息是否为空或通用占位（兜底消息同样视为通用）
func IsGenericMessage(msg string) bool {
	return msg == "" || msg == GenericFallback || msg == PlaceholderOther || msg == PlaceholderDevice
}

// StandardAlertCodes 标准报警码表（Printer-MIB prtAlertCode，RFC 3805）
// 小码段 1-46 为通用子单元报警；800/900/1100 段为纸盒与耗材专用码
var StandardAlertCodes = map[int]string{
	1:  PlaceholderOther,
	2:  PlaceholderDevice,
	3:  "Cover Open",
	4:  "Cover Closed",
	5:  "Interlock Open",
	6:  "Interlock Closed",
	7:  "Configuration Changed",
	8:  "Paper Jam",
	9:  "Subunit Missing",
	10: "Subunit Life Almost Over",
	11: "Subunit Life Over",
	12: "Subunit Almost Empty",
	13: "Subunit Empty",
	14: "Subunit Almost Full",
	15: "Subunit Full",
	16: "Subunit Near Limit",
	17: "Subunit At Limit",
	18: "Subunit Opened",
	19: "Subunit Closed",
	20: "Subunit Turned On",
	21: "Subunit Turned Off",
	22: "Subunit Offline",
	23: "Subunit Power Saver",
	24: "Warming Up",
	25: "Subunit Added",
	26: "Subunit Removed",
	27: "Subunit Resource Added",
	28: "Subunit Resource Removed",
	29: "Recoverable Failure",
	30: "Unrecoverable Failure",
	31: "Recoverable Storage Error",
	32: "Unrecoverable Storage Error",
	33: "Motor Failure",
	34: "Memory Exhausted",
	35: "Under Temperature",
	36: "Over Temperature",
	37: "Timing Failure",
	38: "Thermistor Failure",

	// 通用打印机状态（500 段）
	501: "Door Open",
	502: "Door Closed",
	503: "Power Up",
	504: "Power Down",
	507: "Ready To Print",

	// 进纸盒（800 段）
	801: "Input Tray Missing",
	807: "Input Media Supply Low",
	808: "Input Media Supply Empty",
	810: "Manual Input Request",
	811: "Input Tray Position Failure",
	812: "Input Tray Elevation Failure",

	// 出纸盒（900 段）
	901: "Output Tray Missing",
	902: "Output Tray Almost Full",
	903: "Output Tray Full",

	// 定影单元（1000 段）
	1001: "Fuser Under Temperature",
	1002: "Fuser Over Temperature",
	1004: "Fuser Thermistor Failure",

	// 色料与耗材（1100 段）
	1101: "Toner Empty",
	1102: "Ink Empty",
	1104: "Toner Low",
	1105: "Ink Low",
	1107: "Waste Toner Receptacle Almost Full",
	1109: "Waste Toner Receptacle Full",
	1111: "OPC Life Almost Over",
	1112: "OPC Life Over",
	1113: "Developer Almost Empty",
	1114: "Developer Empty",
	1115: "Toner Cartridge Missing",
}

// CriticalCodes 总是判为 critical 的标准码集合
var CriticalCodes = map[int]bool{
	8:    true, // Paper Jam
	11:   true,
	13:   true,
	17:   true,
	22:   true,
	30:   true,
	32:   true,
	33:   true,
	34:   true,
	36:   true,
	38:   true,
	808:  true,
	811:  true,
	812:  true,
	903:  true,
	1002: true,
	1004: true,
	1101: true,
	1102: true,
	1109: true,
	1112: true,
	1114: true,
	1115: true,
}

// WarningCodes 总是判为 warning 的标准码集合（与 CriticalCodes 互斥）
var WarningCodes = map[int]bool{
	3:    true, // Cover Open
	5:    true,
	9:    true,
	10:   true,
	12:   true,
	16:   true,
	29:   true,
	31:   true,
	35:   true,
	37:   true,
	501:  true,
	801:  true,
	807:  true,
	810:  true,
	901:  true,
	902:  true,
	1001: true,
	1104: true, // Toner Low
	1105: true,
	1107: true,
	1111: true,
	1113: true,
}

// SeverityForStandardCode 标准码的严重级别：critical 集合优先，其次 warning，否则 info
func SeverityForStandardCode(code int) models.Severity {
	if CriticalCodes[code] {
		return models.SeverityCritical
	}
	if WarningCodes[code] {
		return models.SeverityWarning
	}
	return models.SeverityInfo
}

// VendorAlertCode 厂商私有码表项
type VendorAlertCode struct {
	Message  string
	Severity models.Severity
	Ignore   bool // 非报警状态（Ready 等），该条目不得作为报警上报
}

// VendorAlertCodes 厂商私有码表
// 厂商码比标准码更具体，命中时覆盖标准码的结果
var VendorAlertCodes = map[int]VendorAlertCode{
	0:    {Message: "Ready", Severity: models.SeverityInfo, Ignore: true},
	1:    {Message: "Normal Operation", Severity: models.SeverityInfo, Ignore: true},
	2:    {Message: "Sleep Mode", Severity: models.SeverityInfo, Ignore: true},
	5:    {Message: "Printing", Severity: models.SeverityInfo, Ignore: true},
	1003: {Message: "Paper Jam", Severity: models.SeverityCritical},
	1007: {Message: "Paper Out", Severity: models.SeverityCritical},
	2011: {Message: "Replace Toner Cartridge", Severity: models.SeverityCritical},
	2012: {Message: "Toner Low", Severity: models.SeverityWarning},
	2021: {Message: "Replace Drum Unit", Severity: models.SeverityCritical},
	2022: {Message: "Drum Life Low", Severity: models.SeverityWarning},
	3001: {Message: "Cover Open", Severity: models.SeverityWarning},
	3005: {Message: "Waste Toner Box Full", Severity: models.SeverityCritical},
	4010: {Message: "Call Service", Severity: models.SeverityCritical},
	4020: {Message: "Fuser Unit Failure", Severity: models.SeverityCritical},
	5002: {Message: "Duplex Unit Failure", Severity: models.SeverityCritical},
	5008: {Message: "Scanner Unit Failure", Severity: models.SeverityWarning},
}

// AlertGroupEntry 报警分组上下文表项
type AlertGroupEntry struct {
	Message  string
	Severity models.Severity
}

// AlertGroupContext 报警分组上下文（Printer-MIB prtAlertGroup）
// 只在没有任何具体码或文本时作为最后的兜底来源
var AlertGroupContext = map[int]AlertGroupEntry{
	5:  {Message: "General Printer Problem", Severity: models.SeverityWarning},
	6:  {Message: "Cover Open", Severity: models.SeverityWarning},
	8:  {Message: "Paper Tray Problem", Severity: models.SeverityWarning},
	9:  {Message: "Output Tray Problem", Severity: models.SeverityWarning},
	10: {Message: "Print Engine Problem", Severity: models.SeverityCritical},
	11: {Message: "Supply Problem", Severity: models.SeverityWarning},
	12: {Message: "Colorant Problem", Severity: models.SeverityWarning},
	13: {Message: "Media Path Problem", Severity: models.SeverityCritical},
	14: {Message: "Communication Problem", Severity: models.SeverityWarning},
	15: {Message: "Interpreter Problem", Severity: models.SeverityWarning},
}

// ProblemPattern 自由文本匹配模式
type ProblemPattern struct {
	Pattern  *regexp.Regexp
	Message  string
	Severity models.Severity
}

// ProblemPatterns 自由文本匹配模式表，按顺序自上而下匹配，首个命中生效。
// 具体短语必须排在 error/alert 这类兜底模式之前。
var ProblemPatterns = []ProblemPattern{
	{regexp.MustCompile(`(?i)paper\s*jam|jam(med)?\b`), "Paper Jam", models.SeverityCritical},
	{regexp.MustCompile(`(?i)(toner|ink)\s+(empty|out)|out\s+of\s+(toner|ink)|replace\s+(the\s+)?(toner|cartridge)`), "Toner Empty", models.SeverityCritical},
	{regexp.MustCompile(`(?i)toner\s+(very\s+)?low|low\s+(on\s+)?toner`), "Toner Low", models.SeverityWarning},
	{regexp.MustCompile(`(?i)paper\s+out|out\s+of\s+paper|load\s+paper|tray\s*\d*\s+empty`), "Paper Out", models.SeverityCritical},
	{regexp.MustCompile(`(?i)cover\s+open|door\s+open`), "Cover Open", models.SeverityWarning},
	{regexp.MustCompile(`(?i)off-?line`), "Device Offline", models.SeverityWarning},
	{regexp.MustCompile(`(?i)fuser`), "Fuser Problem", models.SeverityCritical},
	{regexp.MustCompile(`(?i)waste\s+toner`), "Waste Toner Full", models.SeverityWarning},
	{regexp.MustCompile(`(?i)drum`), "Drum Unit Problem", models.SeverityWarning},
	{regexp.MustCompile(`(?i)call\s+(for\s+)?service|service\s+request`), "Service Required", models.SeverityCritical},
	{regexp.MustCompile(`(?i)supply\s+low|low\s+supply`), "Supply Low", models.SeverityWarning},
	{regexp.MustCompile(`(?i)error`), "Device Error", models.SeverityWarning},
	{regexp.MustCompile(`(?i)warning|alert`), PlaceholderDevice, models.SeverityInfo},
}

// MatchProblemText 按顺序匹配自由文本，返回首个命中的模式
func MatchProblemText(text string) (ProblemPattern, bool) {
	for _, p := range ProblemPatterns {
		if p.Pattern.MatchString(text) {
			return p, true
		}
	}
	return ProblemPattern{}, false
}
