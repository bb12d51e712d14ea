package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"trapwatch/internal/models"

	"go.uber.org/zap"
)

// ErrTrapNotFound 指定 trap_id 的记录不存在
var ErrTrapNotFound = errors.New("trap not found")

// TrapRepository 陷阱记录仓库（traps 表）
type TrapRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTrapRepository 创建陷阱记录仓库
func NewTrapRepository(db *sql.DB, logger *zap.Logger) *TrapRepository {
	return &TrapRepository{
		db:     db,
		logger: logger,
	}
}

const trapColumns = `
		trap_id,
		source_ip,
		raw_payload,
		parsed_message,
		severity,
		received_at,
		processed,
		resolved_at,
		resolved_by,
		assigned_to,
		assigned_at`

// GetTrap 根据 trap_id 获取单条记录
func (r *TrapRepository) GetTrap(ctx context.Context, trapID string) (*models.TrapRecord, error) {
	if trapID == "" {
		return nil, fmt.Errorf("trap_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM traps WHERE trap_id = $1`, trapColumns)

	row := r.db.QueryRowContext(ctx, query, trapID)
	trap, err := scanTrap(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: trap_id=%s", ErrTrapNotFound, trapID)
		}
		return nil, fmt.Errorf("failed to get trap: %w", err)
	}

	return trap, nil
}

// InsertTrap 插入新记录
func (r *TrapRepository) InsertTrap(ctx context.Context, trap *models.TrapRecord) error {
	if trap == nil {
		return fmt.Errorf("trap is required")
	}
	if trap.TrapID == "" {
		return fmt.Errorf("trap_id is required")
	}

	query := `
		INSERT INTO traps (
			trap_id,
			source_ip,
			raw_payload,
			parsed_message,
			severity,
			received_at,
			processed,
			resolved_at,
			resolved_by,
			assigned_to,
			assigned_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	rawPayload := trap.RawPayload
	if len(rawPayload) == 0 {
		rawPayload = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx,
		query,
		trap.TrapID,
		trap.SourceIP,
		[]byte(rawPayload),
		trap.ParsedMessage,
		string(trap.Severity),
		trap.ReceivedAt,
		trap.Processed,
		trap.ResolvedAt,
		trap.ResolvedBy,
		trap.AssignedTo,
		trap.AssignedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert trap: %w", err)
	}

	return nil
}

// UpdateTrapFields 部分更新（updates 为 字段→值 映射）
func (r *TrapRepository) UpdateTrapFields(ctx context.Context, trapID string, updates map[string]interface{}) error {
	if trapID == "" {
		return fmt.Errorf("trap_id is required")
	}
	if len(updates) == 0 {
		return fmt.Errorf("updates cannot be empty")
	}

	// 允许更新的字段（trap_id、source_ip、raw_payload、received_at 不可变）
	allowedFields := map[string]bool{
		"parsed_message": true,
		"severity":       true,
		"processed":      true,
		"resolved_at":    true,
		"resolved_by":    true,
		"assigned_to":    true,
		"assigned_at":    true,
	}

	setParts := []string{}
	args := []interface{}{}
	argN := 1

	// 按字段名排序，保证生成的 SQL 稳定
	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if !allowedFields[field] {
			return fmt.Errorf("field '%s' is not allowed to update", field)
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", field, argN))
		args = append(args, updates[field])
		argN++
	}

	args = append(args, trapID)
	query := fmt.Sprintf(`
		UPDATE traps
		SET %s
		WHERE trap_id = $%d
	`, strings.Join(setParts, ", "), argN)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update trap: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: trap_id=%s", ErrTrapNotFound, trapID)
	}

	return nil
}

// ListTrapsBySource 按来源 IP 查询全部记录
func (r *TrapRepository) ListTrapsBySource(ctx context.Context, sourceIP string) ([]*models.TrapRecord, error) {
	if sourceIP == "" {
		return []*models.TrapRecord{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM traps
		WHERE source_ip = $1
		ORDER BY received_at DESC
	`, trapColumns)

	rows, err := r.db.QueryContext(ctx, query, sourceIP)
	if err != nil {
		return nil, fmt.Errorf("failed to query traps by source: %w", err)
	}
	defer rows.Close()

	return collectTraps(rows)
}

// ListTraps 按接收时间倒序查询（limit <= 0 时返回全部）
func (r *TrapRepository) ListTraps(ctx context.Context, limit int) ([]*models.TrapRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM traps
		ORDER BY received_at DESC
	`, trapColumns)

	var rows *sql.Rows
	var err error
	if limit > 0 {
		query += ` LIMIT $1`
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query traps: %w", err)
	}
	defer rows.Close()

	return collectTraps(rows)
}

// CountTraps 统计记录总数
func (r *TrapRepository) CountTraps(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traps`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count traps: %w", err)
	}
	return count, nil
}

// ClearTraps 删除全部记录，返回删除数量
func (r *TrapRepository) ClearTraps(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM traps`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear traps: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// rowScanner QueryRow 与 Rows 的公共扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTrap 扫描单条记录，处理可空字段
func scanTrap(row rowScanner) (*models.TrapRecord, error) {
	var trap models.TrapRecord
	var rawPayload []byte
	var severity string
	var resolvedAt, assignedAt sql.NullTime
	var resolvedBy, assignedTo sql.NullString

	err := row.Scan(
		&trap.TrapID,
		&trap.SourceIP,
		&rawPayload,
		&trap.ParsedMessage,
		&severity,
		&trap.ReceivedAt,
		&trap.Processed,
		&resolvedAt,
		&resolvedBy,
		&assignedTo,
		&assignedAt,
	)
	if err != nil {
		return nil, err
	}

	trap.Severity = models.ParseSeverity(severity)

	if len(rawPayload) > 0 {
		trap.RawPayload = rawPayload
	} else {
		trap.RawPayload = json.RawMessage("{}")
	}

	if resolvedAt.Valid {
		trap.ResolvedAt = &resolvedAt.Time
	}
	if resolvedBy.Valid {
		trap.ResolvedBy = &resolvedBy.String
	}
	if assignedTo.Valid {
		trap.AssignedTo = &assignedTo.String
	}
	if assignedAt.Valid {
		trap.AssignedAt = &assignedAt.Time
	}

	return &trap, nil
}

// collectTraps 扫描多条记录
func collectTraps(rows *sql.Rows) ([]*models.TrapRecord, error) {
	traps := []*models.TrapRecord{}
	for rows.Next() {
		trap, err := scanTrap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trap: %w", err)
		}
		traps = append(traps, trap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate traps: %w", err)
	}

	return traps, nil
}
