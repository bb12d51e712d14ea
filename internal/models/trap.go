package models

import (
	"encoding/json"
	"time"
)

// TrapRecord 陷阱记录（对应 traps 表）
type TrapRecord struct {
	TrapID        string          `json:"trap_id" db:"trap_id"`
	SourceIP      string          `json:"source_ip" db:"source_ip"`
	RawPayload    json.RawMessage `json:"raw_payload" db:"raw_payload"` // 原样保存，供审计与重新解码
	ParsedMessage string          `json:"parsed_message" db:"parsed_message"`
	Severity      Severity        `json:"severity" db:"severity"`
	ReceivedAt    time.Time       `json:"received_at" db:"received_at"` // 入库后不可变
	Processed     bool            `json:"processed" db:"processed"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy    *string         `json:"resolved_by,omitempty" db:"resolved_by"`
	AssignedTo    *string         `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedAt    *time.Time      `json:"assigned_at,omitempty" db:"assigned_at"`
}

// AlertEntry 设备报警表的一行（按 index 分组的瞬态结构，解码期间使用）
type AlertEntry struct {
	Index         string
	StdCode       int // 标准报警码（Printer-MIB prtAlertCode）
	VendorCode    int // 厂商私有码（0 是合法条目，缺失与否看 HasVendorCode）
	HasVendorCode bool
	AlertGroup    int    // 报警分组（prtAlertGroup）
	Description   string // 自由文本描述
}

// DecodeResult 一次解码的结果
type DecodeResult struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Ignore   bool     `json:"-"` // 厂商码标记为可忽略时置位，该条目不对外报告
}

// GatewayTrap 网关发来的陷阱消息（从 Redis Streams 解析）
type GatewayTrap struct {
	SourceIP  string                 `json:"source_ip"`
	Payload   map[string]interface{} `json:"payload"`
	Message   string                 `json:"message,omitempty"`  // 网关预解码的消息（可选）
	Severity  string                 `json:"severity,omitempty"` // 网关预解码的级别（可选）
	Timestamp int64                  `json:"timestamp"`
	Topic     string                 `json:"topic,omitempty"`
}

// ParseGatewayTrap 从 Redis Streams 消息解析网关陷阱数据
func ParseGatewayTrap(values map[string]interface{}) (*GatewayTrap, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, ErrInvalidDataFormat
	}

	var trap GatewayTrap
	if err := json.Unmarshal([]byte(dataStr), &trap); err != nil {
		return nil, err
	}

	return &trap, nil
}

// ErrInvalidDataFormat 数据格式错误
var ErrInvalidDataFormat = &DataFormatError{Message: "invalid data format"}

// DataFormatError 数据格式错误类型
type DataFormatError struct {
	Message string
}

func (e *DataFormatError) Error() string {
	return e.Message
}
