package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trapwatch/internal/codes"
	"trapwatch/internal/config"
	"trapwatch/internal/decoder"
	"trapwatch/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrapStore 陷阱记录存储接口（由 repository.TrapRepository 实现）。
// 生命周期管理只依赖这组通用记录操作。
type TrapStore interface {
	GetTrap(ctx context.Context, trapID string) (*models.TrapRecord, error)
	InsertTrap(ctx context.Context, trap *models.TrapRecord) error
	UpdateTrapFields(ctx context.Context, trapID string, updates map[string]interface{}) error
	ListTrapsBySource(ctx context.Context, sourceIP string) ([]*models.TrapRecord, error)
	ListTraps(ctx context.Context, limit int) ([]*models.TrapRecord, error)
	CountTraps(ctx context.Context) (int, error)
	ClearTraps(ctx context.Context) (int, error)
}

// TrapService 陷阱生命周期管理
// 状态机：new →（独立地）assigned 和/或 resolved；
// resolved 不是终态，已处理的记录仍可再指派。
type TrapService struct {
	config      *config.Config
	store       TrapStore
	redisClient *redis.Client // 可为 nil（缓存为尽力而为）
	logger      *zap.Logger
}

// NewTrapService 创建陷阱服务
func NewTrapService(cfg *config.Config, store TrapStore, redisClient *redis.Client, logger *zap.Logger) *TrapService {
	return &TrapService{
		config:      cfg,
		store:       store,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Ingest 入库一条陷阱。
// 网关已预解码且消息非占位时直接采用，否则走完整解码级联。
// 返回新记录的 trap_id。
func (s *TrapService) Ingest(ctx context.Context, sourceIP string, payload map[string]interface{}, precomputed *models.DecodeResult) (string, error) {
	if sourceIP == "" {
		return "", fmt.Errorf("source_ip is required")
	}

	var result models.DecodeResult
	if precomputed != nil && precomputed.Message != "" && !codes.IsGenericMessage(precomputed.Message) {
		result = *precomputed
		if !result.Severity.Valid() {
			result.Severity = models.SeverityInfo
		}
	} else {
		result = decoder.Decode(payload)
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		// 原始报文无法序列化时仍然入库，不丢失解码结果
		s.logger.Warn("Failed to marshal raw payload",
			zap.String("source_ip", sourceIP),
			zap.Error(err),
		)
		rawPayload = []byte("{}")
	}

	trap := &models.TrapRecord{
		TrapID:        uuid.New().String(),
		SourceIP:      sourceIP,
		RawPayload:    rawPayload,
		ParsedMessage: result.Message,
		Severity:      result.Severity,
		ReceivedAt:    time.Now(),
		Processed:     false,
	}

	if err := s.store.InsertTrap(ctx, trap); err != nil {
		return "", fmt.Errorf("failed to ingest trap: %w", err)
	}

	s.cacheLatestAlert(ctx, trap)

	s.logger.Info("Trap ingested",
		zap.String("trap_id", trap.TrapID),
		zap.String("source_ip", sourceIP),
		zap.String("message", result.Message),
		zap.String("severity", string(result.Severity)),
	)

	return trap.TrapID, nil
}

// Resolve 处理单条陷阱（trap_id 不存在时返回 NotFound）
func (s *TrapService) Resolve(ctx context.Context, trapID, actor string) error {
	if trapID == "" {
		return fmt.Errorf("trap_id is required")
	}
	if actor == "" {
		actor = s.config.Trap.DefaultActor
	}

	if _, err := s.store.GetTrap(ctx, trapID); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"processed":   true,
		"resolved_at": time.Now(),
		"resolved_by": actor,
	}
	if err := s.store.UpdateTrapFields(ctx, trapID, updates); err != nil {
		return fmt.Errorf("failed to resolve trap: %w", err)
	}

	s.logger.Info("Trap resolved",
		zap.String("trap_id", trapID),
		zap.String("resolved_by", actor),
	)

	return nil
}

// ResolveBySource 处理指定来源的全部未处理陷阱，返回处理数量。
// 已处理的记录不动；来源无匹配时返回 0，不报错（幂等）。
func (s *TrapService) ResolveBySource(ctx context.Context, sourceIP, actor string) (int, error) {
	if actor == "" {
		actor = s.config.Trap.DefaultActor
	}

	traps, err := s.store.ListTrapsBySource(ctx, sourceIP)
	if err != nil {
		return 0, fmt.Errorf("failed to list traps by source: %w", err)
	}

	now := time.Now()
	resolved := 0
	for _, trap := range traps {
		if trap.Processed {
			continue
		}
		updates := map[string]interface{}{
			"processed":   true,
			"resolved_at": now,
			"resolved_by": actor,
		}
		if err := s.store.UpdateTrapFields(ctx, trap.TrapID, updates); err != nil {
			// 单条失败不影响其余记录
			s.logger.Error("Failed to resolve trap",
				zap.String("trap_id", trap.TrapID),
				zap.Error(err),
			)
			continue
		}
		resolved++
	}

	s.logger.Info("Traps resolved by source",
		zap.String("source_ip", sourceIP),
		zap.Int("resolved", resolved),
	)

	return resolved, nil
}

// Assign 指派单条陷阱给技术员（不影响 processed/resolved 字段）
func (s *TrapService) Assign(ctx context.Context, trapID, technician string) error {
	if trapID == "" {
		return fmt.Errorf("trap_id is required")
	}
	if technician == "" {
		return fmt.Errorf("technician is required")
	}

	if _, err := s.store.GetTrap(ctx, trapID); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"assigned_to": technician,
		"assigned_at": time.Now(),
	}
	if err := s.store.UpdateTrapFields(ctx, trapID, updates); err != nil {
		return fmt.Errorf("failed to assign trap: %w", err)
	}

	s.logger.Info("Trap assigned",
		zap.String("trap_id", trapID),
		zap.String("assigned_to", technician),
	)

	return nil
}

// AssignBySource 将指定来源的陷阱批量指派给技术员，返回指派数量。
// 已指派给同一技术员的记录跳过，重复调用返回 0。
func (s *TrapService) AssignBySource(ctx context.Context, sourceIP, technician string) (int, error) {
	if technician == "" {
		return 0, fmt.Errorf("technician is required")
	}

	traps, err := s.store.ListTrapsBySource(ctx, sourceIP)
	if err != nil {
		return 0, fmt.Errorf("failed to list traps by source: %w", err)
	}

	now := time.Now()
	assigned := 0
	for _, trap := range traps {
		if trap.AssignedTo != nil && *trap.AssignedTo == technician {
			continue
		}
		updates := map[string]interface{}{
			"assigned_to": technician,
			"assigned_at": now,
		}
		if err := s.store.UpdateTrapFields(ctx, trap.TrapID, updates); err != nil {
			s.logger.Error("Failed to assign trap",
				zap.String("trap_id", trap.TrapID),
				zap.Error(err),
			)
			continue
		}
		assigned++
	}

	s.logger.Info("Traps assigned by source",
		zap.String("source_ip", sourceIP),
		zap.String("assigned_to", technician),
		zap.Int("assigned", assigned),
	)

	return assigned, nil
}

// ReprocessAll 对消息仍为空或占位的记录重新解码。
// 新消息非占位时覆盖 parsed_message；severity 只在新级别不是 info 时
// 覆盖，已有的非 info 级别不被 info 级的重解码结果抹掉。
// 单条解码失败只跳过该条，不中断整批。返回 (更新数, 总数)。
func (s *TrapService) ReprocessAll(ctx context.Context) (int, int, error) {
	traps, err := s.store.ListTraps(ctx, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list traps: %w", err)
	}

	updated := 0
	for _, trap := range traps {
		if !codes.IsGenericMessage(trap.ParsedMessage) {
			continue
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(trap.RawPayload, &payload); err != nil {
			s.logger.Warn("Failed to unmarshal raw payload, skipping",
				zap.String("trap_id", trap.TrapID),
				zap.Error(err),
			)
			continue
		}

		result := decoder.Decode(payload)
		if codes.IsGenericMessage(result.Message) {
			continue
		}

		updates := map[string]interface{}{
			"parsed_message": result.Message,
		}
		if result.Severity != models.SeverityInfo {
			updates["severity"] = string(result.Severity)
		}

		if err := s.store.UpdateTrapFields(ctx, trap.TrapID, updates); err != nil {
			s.logger.Error("Failed to update reprocessed trap",
				zap.String("trap_id", trap.TrapID),
				zap.Error(err),
			)
			continue
		}
		updated++

		trap.ParsedMessage = result.Message
		if result.Severity != models.SeverityInfo {
			trap.Severity = result.Severity
		}
		s.cacheLatestAlert(ctx, trap)
	}

	s.logger.Info("Traps reprocessed",
		zap.Int("updated", updated),
		zap.Int("total", len(traps)),
	)

	return updated, len(traps), nil
}

// ClearAll 删除全部记录，返回删除前的数量
func (s *TrapService) ClearAll(ctx context.Context) (int, error) {
	deleted, err := s.store.ClearTraps(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear traps: %w", err)
	}

	s.logger.Info("All traps cleared",
		zap.Int("deleted", deleted),
	)

	return deleted, nil
}

// List 按接收时间倒序查询记录
func (s *TrapService) List(ctx context.Context, limit int) ([]*models.TrapRecord, error) {
	traps, err := s.store.ListTraps(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list traps: %w", err)
	}
	return traps, nil
}

// Count 统计记录总数
func (s *TrapService) Count(ctx context.Context) (int, error) {
	return s.store.CountTraps(ctx)
}

// latestAlert 写入 Redis 的最新报警摘要
type latestAlert struct {
	TrapID     string    `json:"trap_id"`
	Message    string    `json:"message"`
	Severity   string    `json:"severity"`
	ReceivedAt time.Time `json:"received_at"`
}

// cacheLatestAlert 缓存来源的最新报警（尽力而为，失败只记日志）
func (s *TrapService) cacheLatestAlert(ctx context.Context, trap *models.TrapRecord) {
	if s.redisClient == nil {
		return
	}

	alert := latestAlert{
		TrapID:     trap.TrapID,
		Message:    trap.ParsedMessage,
		Severity:   string(trap.Severity),
		ReceivedAt: trap.ReceivedAt,
	}

	jsonData, err := json.Marshal(alert)
	if err != nil {
		s.logger.Warn("Failed to marshal latest alert", zap.Error(err))
		return
	}

	key := s.config.Trap.Cache.AlertKeyPrefix + trap.SourceIP
	ttl := time.Duration(s.config.Trap.Cache.AlertTTL) * time.Second
	if err := s.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		s.logger.Warn("Failed to cache latest alert",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
