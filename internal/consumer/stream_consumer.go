package consumer

import (
	"context"
	"fmt"
	"time"

	"trapwatch/internal/config"
	"trapwatch/internal/models"
	"trapwatch/internal/redisclient"
	"trapwatch/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamConsumer Redis Streams 消费者。
// 消费网关陷阱数据流，逐条解码并交给生命周期服务入库。
type StreamConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	trapService *service.TrapService
	logger      *zap.Logger
}

// NewStreamConsumer 创建 Streams 消费者
func NewStreamConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	trapService *service.TrapService,
	logger *zap.Logger,
) *StreamConsumer {
	return &StreamConsumer{
		config:      cfg,
		redisClient: redisClient,
		trapService: trapService,
		logger:      logger,
	}
}

// Start 启动消费者
func (c *StreamConsumer) Start(ctx context.Context) error {
	if err := redisclient.CreateConsumerGroup(ctx, c.redisClient, c.config.Trap.Stream, c.config.Trap.ConsumerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Stream consumer started",
		zap.String("stream", c.config.Trap.Stream),
		zap.String("consumer_group", c.config.Trap.ConsumerGroup),
		zap.String("consumer_name", c.config.Trap.ConsumerName),
	)

	// 消费循环，读取失败时指数退避
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.ConsumeOnce(ctx); err != nil {
				c.logger.Error("Failed to consume stream",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// ConsumeOnce 读取一批消息并逐条处理
func (c *StreamConsumer) ConsumeOnce(ctx context.Context) error {
	messages, err := redisclient.ReadFromStream(
		ctx,
		c.redisClient,
		c.config.Trap.Stream,
		c.config.Trap.ConsumerGroup,
		c.config.Trap.ConsumerName,
		c.config.Trap.BatchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processMessage(ctx, &msg); err != nil {
			c.logger.Error("Failed to process message",
				zap.String("stream", msg.Stream),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			// 继续处理下一条消息，不中断
			continue
		}

		if err := redisclient.AckMessage(ctx, c.redisClient, c.config.Trap.Stream, c.config.Trap.ConsumerGroup, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processMessage 处理单条消息
func (c *StreamConsumer) processMessage(ctx context.Context, msg *redisclient.StreamMessage) error {
	trap, err := models.ParseGatewayTrap(msg.Values)
	if err != nil {
		return fmt.Errorf("failed to parse gateway trap: %w", err)
	}

	// 网关预解码结果（如有）作为候选传入，占位消息会被忽略
	var precomputed *models.DecodeResult
	if trap.Message != "" {
		precomputed = &models.DecodeResult{
			Message:  trap.Message,
			Severity: models.ParseSeverity(trap.Severity),
		}
	}

	trapID, err := c.trapService.Ingest(ctx, trap.SourceIP, trap.Payload, precomputed)
	if err != nil {
		return fmt.Errorf("failed to ingest trap: %w", err)
	}

	c.logger.Debug("Processed gateway trap",
		zap.String("trap_id", trapID),
		zap.String("source_ip", trap.SourceIP),
		zap.String("message_id", msg.ID),
	)

	return nil
}
