package decoder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"trapwatch/internal/models"
)

// prtAlertTable（Printer-MIB，RFC 3805）报警表 OID 前缀与列号。
// 列号由协议规定，必须按文档保留为常量，不得推导。
const (
	alertTablePrefix = "1.3.6.1.2.1.43.18.1.1"

	alertFieldGroup  = 4 // prtAlertGroup
	alertFieldCode   = 7 // prtAlertCode（标准码）
	alertFieldDesc   = 8 // prtAlertDescription
	alertFieldVendor = 9 // 厂商私有码（网关扩展列）
)

// prtMarkerSuppliesTable 耗材表 OID 前缀与列号
const (
	supplyTablePrefix = "1.3.6.1.2.1.43.11.1.1"

	supplyFieldName  = 6 // prtMarkerSuppliesDescription
	supplyFieldLevel = 9 // prtMarkerSuppliesLevel
)

// SupplyReading 一次解码中提取的耗材读数
type SupplyReading struct {
	Name  string
	Level int
}

// GroupEntries 将 OID→值 的平面映射按报警表行号分组为 AlertEntry，
// 并单独提取耗材名称/余量（每次解码只保留最先遇到的一对）。
// 无法识别的 OID 直接忽略，不报错。
// 为保证结果确定，按 OID 字典序遍历。
func GroupEntries(varbinds map[string]interface{}) (map[string]*models.AlertEntry, *SupplyReading) {
	entries := make(map[string]*models.AlertEntry)

	var supplyName string
	var supplyLevel *int

	oids := make([]string, 0, len(varbinds))
	for oid := range varbinds {
		oids = append(oids, oid)
	}
	sort.Strings(oids)

	for _, oid := range oids {
		value := varbinds[oid]
		norm := strings.TrimPrefix(oid, ".")

		if field, index, ok := splitTableOID(norm, alertTablePrefix); ok {
			entry := entries[index]
			if entry == nil {
				entry = &models.AlertEntry{Index: index}
				entries[index] = entry
			}

			switch field {
			case alertFieldGroup:
				if n, err := toInt(value); err == nil {
					entry.AlertGroup = n
				}
			case alertFieldCode:
				if n, err := toInt(value); err == nil {
					entry.StdCode = n
				}
			case alertFieldDesc:
				entry.Description = toText(value)
			case alertFieldVendor:
				if n, err := toInt(value); err == nil {
					entry.VendorCode = n
					entry.HasVendorCode = true
				}
			}
			continue
		}

		if field, _, ok := splitTableOID(norm, supplyTablePrefix); ok {
			switch field {
			case supplyFieldName:
				if supplyName == "" {
					supplyName = toText(value)
				}
			case supplyFieldLevel:
				if supplyLevel == nil {
					if n, err := toInt(value); err == nil {
						supplyLevel = &n
					}
				}
			}
		}
	}

	var supply *SupplyReading
	if supplyLevel != nil {
		supply = &SupplyReading{Name: supplyName, Level: *supplyLevel}
	}

	return entries, supply
}

// splitTableOID 匹配 <prefix>.<field>(.<index>)? 形状的 OID，
// 返回列号与行号。行号缺省为 "0"。
func splitTableOID(oid, prefix string) (field int, index string, ok bool) {
	if !strings.HasPrefix(oid, prefix+".") {
		return 0, "", false
	}

	rest := oid[len(prefix)+1:]
	parts := strings.Split(rest, ".")
	if len(parts) == 0 || parts[0] == "" {
		return 0, "", false
	}

	field, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}

	index = "0"
	if len(parts) > 1 {
		index = parts[len(parts)-1]
	}

	return field, index, true
}

// toInt 容错的整数解析（网关数据类型不固定）
func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// toText 容错的文本解析
func toText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
