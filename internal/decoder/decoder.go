package decoder

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"trapwatch/internal/codes"
	"trapwatch/internal/models"
)

// Decode 解码入口：纯函数，无共享状态，相同输入恒产生相同输出，
// 可安全并发调用，也是 reprocess 的前提。
//
// 按固定顺序尝试每种已知的报文形状，上一策略没有结果或只有占位
// 消息时才尝试下一策略。耗材阈值判定最后执行，命中时覆盖前面
// 任何策略的结果。全部未命中时返回兜底消息。
func Decode(payload map[string]interface{}) models.DecodeResult {
	var candidate *models.DecodeResult

	for _, strategy := range strategies {
		res := strategy(payload)
		if res == nil {
			continue
		}
		if candidate == nil {
			candidate = res
		}
		if !codes.IsGenericMessage(res.Message) {
			candidate = res
			break
		}
	}

	result := models.DecodeResult{Message: codes.GenericFallback, Severity: models.SeverityInfo}
	if candidate != nil {
		result = *candidate
	}

	// 耗材信号比报警码文本更权威
	if supply := extractSupply(payload); supply != nil {
		if override, ok := EvaluateSupply(supply.Name, supply.Level); ok {
			result = override
		}
	}

	result.Ignore = false
	return result
}

// strategy 单个解码策略：返回 nil 表示该形状不提供任何信号
type strategy func(payload map[string]interface{}) *models.DecodeResult

// strategies 策略表，顺序即优先级
var strategies = []strategy{
	decodeExplicitCode,
	decodeExplicitMessage,
	decodeGroupedVarbinds,
	decodePDUVarbinds,
	decodeFlatVarbinds,
	decodePolledAlert,
	decodeRawText,
	decodeBareIdentifier,
	decodeSummaryString,
}

// decodeExplicitCode 形状 1：显式数字报警码字段
func decodeExplicitCode(payload map[string]interface{}) *models.DecodeResult {
	v, ok := payload["alert_code"]
	if !ok {
		return nil
	}
	code, err := toInt(v)
	if err != nil {
		return nil
	}
	msg, ok := codes.StandardAlertCodes[code]
	if !ok {
		return nil
	}
	return &models.DecodeResult{Message: msg, Severity: codes.SeverityForStandardCode(code)}
}

// decodeExplicitMessage 形状 2：显式自由文本消息字段。
// 消息内容原样保留，级别取自首个命中的文本模式。
func decodeExplicitMessage(payload map[string]interface{}) *models.DecodeResult {
	text := CleanDescription(toText(payload["message"]))
	if !usableDescription(text) {
		return nil
	}

	severity := models.SeverityInfo
	if pattern, ok := codes.MatchProblemText(text); ok {
		severity = pattern.Severity
	}
	return &models.DecodeResult{Message: text, Severity: severity}
}

// decodeGroupedVarbinds 形状 3：OID→值 映射。
// 分组 → 逐条解析 → 仲裁。按行号排序遍历保证结果确定。
func decodeGroupedVarbinds(payload map[string]interface{}) *models.DecodeResult {
	varbinds, ok := payload["varbinds"].(map[string]interface{})
	if !ok {
		return nil
	}

	entries, _ := GroupEntries(varbinds)
	if len(entries) == 0 {
		return nil
	}

	indexes := make([]string, 0, len(entries))
	for index := range entries {
		indexes = append(indexes, index)
	}
	sort.Strings(indexes)

	results := make([]models.DecodeResult, 0, len(entries))
	for _, index := range indexes {
		results = append(results, ResolveEntry(entries[index]))
	}

	best, ok := SelectBest(results)
	if !ok {
		return nil
	}
	return &best
}

// decodePDUVarbinds 形状 4：PDU 风格的 varbind 数组
func decodePDUVarbinds(payload map[string]interface{}) *models.DecodeResult {
	pdu, ok := payload["pdu"].(map[string]interface{})
	if !ok {
		return nil
	}
	arr, ok := pdu["varbinds"].([]interface{})
	if !ok {
		return nil
	}
	return scanVarbindArray(arr)
}

// decodeFlatVarbinds 形状 5：顶层平面 varbind 数组
func decodeFlatVarbinds(payload map[string]interface{}) *models.DecodeResult {
	arr, ok := payload["varbinds"].([]interface{})
	if !ok {
		return nil
	}
	return scanVarbindArray(arr)
}

// scanVarbindArray 扫描 varbind 数组：标准码 OID、描述 OID、
// 其余字符串值逐个与文本模式匹配。单条损坏不影响其余条目。
func scanVarbindArray(arr []interface{}) *models.DecodeResult {
	var results []models.DecodeResult

	for _, item := range arr {
		vb, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		oid := strings.TrimPrefix(toText(vb["oid"]), ".")
		value := vb["value"]

		if field, _, ok := splitTableOID(oid, alertTablePrefix); ok {
			switch field {
			case alertFieldCode:
				if code, err := toInt(value); err == nil {
					if msg, known := codes.StandardAlertCodes[code]; known {
						results = append(results, models.DecodeResult{
							Message:  msg,
							Severity: codes.SeverityForStandardCode(code),
						})
					}
				}
				continue
			case alertFieldDesc:
				if desc := CleanDescription(toText(value)); usableDescription(desc) {
					severity := models.SeverityInfo
					if pattern, matched := codes.MatchProblemText(desc); matched {
						severity = pattern.Severity
					}
					results = append(results, models.DecodeResult{Message: desc, Severity: severity})
				}
				continue
			}
		}

		// 未识别 OID 的字符串值也参与文本匹配
		if text := CleanDescription(toText(value)); usableDescription(text) {
			if pattern, matched := codes.MatchProblemText(text); matched {
				results = append(results, models.DecodeResult{Message: pattern.Message, Severity: pattern.Severity})
			}
		}
	}

	best, ok := SelectBest(results)
	if !ok {
		return nil
	}
	return &best
}

// decodePolledAlert 形状 6：轮询得到的结构化报警对象
func decodePolledAlert(payload map[string]interface{}) *models.DecodeResult {
	obj, ok := payload["alert"].(map[string]interface{})
	if !ok {
		return nil
	}

	entry := &models.AlertEntry{Index: "0"}
	if n, err := toInt(obj["code"]); err == nil {
		entry.StdCode = n
	}
	if n, err := toInt(obj["vendor_code"]); err == nil {
		entry.VendorCode = n
		entry.HasVendorCode = true
	}
	if n, err := toInt(obj["group"]); err == nil {
		entry.AlertGroup = n
	}
	entry.Description = toText(obj["description"])

	result := ResolveEntry(entry)
	if result.Ignore || result.Message == "" {
		return nil
	}
	return &result
}

// decodeRawText 形状 7：原始自由文本字段。
// 与显式消息字段不同，原始文本只在命中模式时才产生结果，
// 且采用模式的规范消息（原始文本可能不可读）。
func decodeRawText(payload map[string]interface{}) *models.DecodeResult {
	text := toText(payload["raw"])
	if text == "" {
		return nil
	}
	pattern, ok := codes.MatchProblemText(text)
	if !ok {
		return nil
	}
	return &models.DecodeResult{Message: pattern.Message, Severity: pattern.Severity}
}

// trapOIDCategories 裸标识符到粗粒度类别消息的映射，前缀最长者优先排前
var trapOIDCategories = []struct {
	prefix   string
	message  string
	severity models.Severity
}{
	{"1.3.6.1.6.3.1.1.5.1", "Device Cold Start", models.SeverityInfo},
	{"1.3.6.1.6.3.1.1.5.2", "Device Warm Start", models.SeverityInfo},
	{"1.3.6.1.6.3.1.1.5.3", "Network Link Down", models.SeverityWarning},
	{"1.3.6.1.6.3.1.1.5.4", "Network Link Up", models.SeverityInfo},
	{"1.3.6.1.6.3.1.1.5.5", "Authentication Failure", models.SeverityWarning},
	{"1.3.6.1.2.1.43", "Printer Alert", models.SeverityInfo},
}

// decodeBareIdentifier 形状 8：只有陷阱 OID 本身
func decodeBareIdentifier(payload map[string]interface{}) *models.DecodeResult {
	oid := strings.TrimPrefix(toText(payload["oid"]), ".")
	if oid == "" {
		return nil
	}
	for _, cat := range trapOIDCategories {
		if oid == cat.prefix || strings.HasPrefix(oid, cat.prefix+".") {
			return &models.DecodeResult{Message: cat.message, Severity: cat.severity}
		}
	}
	return nil
}

// summaryTokenPattern 摘要字符串中嵌入的 key=value 形状
var summaryTokenPattern = regexp.MustCompile(`(\w+)=(\d+)`)

// decodeSummaryString 形状 9：摘要字符串中的 key=value 片段，
// 厂商码比分组码更具体，优先采用。
func decodeSummaryString(payload map[string]interface{}) *models.DecodeResult {
	text := toText(payload["summary"])
	if text == "" {
		return nil
	}

	var groupResult *models.DecodeResult
	for _, match := range summaryTokenPattern.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(match[1])
		n, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		switch key {
		case "vendor", "vendorcode", "vcode":
			if vendor, ok := codes.VendorAlertCodes[n]; ok && !vendor.Ignore {
				return &models.DecodeResult{Message: vendor.Message, Severity: vendor.Severity}
			}
		case "grp", "group", "alertgroup":
			if group, ok := codes.AlertGroupContext[n]; ok && groupResult == nil {
				groupResult = &models.DecodeResult{Message: group.Message, Severity: group.Severity}
			}
		}
	}

	return groupResult
}

// extractSupply 从各报文形状中提取耗材读数（与报警码级联互不影响）。
// 按形状顺序取首个读数。
func extractSupply(payload map[string]interface{}) *SupplyReading {
	if varbinds, ok := payload["varbinds"].(map[string]interface{}); ok {
		if _, supply := GroupEntries(varbinds); supply != nil {
			return supply
		}
	}

	if pdu, ok := payload["pdu"].(map[string]interface{}); ok {
		if arr, ok := pdu["varbinds"].([]interface{}); ok {
			if supply := scanSupplyVarbinds(arr); supply != nil {
				return supply
			}
		}
	}

	if arr, ok := payload["varbinds"].([]interface{}); ok {
		if supply := scanSupplyVarbinds(arr); supply != nil {
			return supply
		}
	}

	if obj, ok := payload["alert"].(map[string]interface{}); ok {
		if sub, ok := obj["supply"].(map[string]interface{}); ok {
			if level, err := toInt(sub["level"]); err == nil {
				return &SupplyReading{Name: toText(sub["name"]), Level: level}
			}
		}
	}

	return nil
}

// scanSupplyVarbinds 从 varbind 数组中提取耗材名称/余量对
func scanSupplyVarbinds(arr []interface{}) *SupplyReading {
	var name string
	var level *int

	for _, item := range arr {
		vb, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		oid := strings.TrimPrefix(toText(vb["oid"]), ".")

		field, _, ok := splitTableOID(oid, supplyTablePrefix)
		if !ok {
			continue
		}
		switch field {
		case supplyFieldName:
			if name == "" {
				name = toText(vb["value"])
			}
		case supplyFieldLevel:
			if level == nil {
				if n, err := toInt(vb["value"]); err == nil {
					level = &n
				}
			}
		}
	}

	if level == nil {
		return nil
	}
	return &SupplyReading{Name: name, Level: *level}
}
