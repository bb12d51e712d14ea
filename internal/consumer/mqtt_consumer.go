package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trapwatch/internal/config"
	"trapwatch/internal/models"
	"trapwatch/internal/mqttclient"
	"trapwatch/internal/redisclient"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MQTTConsumer 网关 MQTT 消息消费者。
// 接收网关已部分解码的陷阱报文，补充来源信息后转发到 Redis Streams。
type MQTTConsumer struct {
	config      *config.Config
	mqttClient  *mqttclient.Client
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqttclient.Client,
	redisClient *redis.Client,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:      cfg,
		mqttClient:  mqttClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Start 启动消费者
func (c *MQTTConsumer) Start(ctx context.Context) error {
	if err := c.mqttClient.Subscribe(c.config.Trap.Topics.Data, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to trap topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", c.config.Trap.Topics.Data),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if err := c.mqttClient.Unsubscribe(c.config.Trap.Topics.Data); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// handleMessage 处理MQTT消息
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. 从主题中提取来源 IP
	// 主题格式: trap/{source_ip}/data
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	sourceIP := parts[1]

	// 2. 解析消息
	var trapPayload map[string]interface{}
	if err := json.Unmarshal(payload, &trapPayload); err != nil {
		c.logger.Error("Failed to unmarshal MQTT message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	// 3. 构建网关陷阱消息
	trap := models.GatewayTrap{
		SourceIP:  sourceIP,
		Payload:   trapPayload,
		Timestamp: time.Now().Unix(),
		Topic:     topic,
	}

	// 网关可能随报文附带预解码结果
	if msg, ok := trapPayload["gateway_message"].(string); ok {
		trap.Message = msg
	}
	if sev, ok := trapPayload["gateway_severity"].(string); ok {
		trap.Severity = sev
	}

	// 4. 发布到 Redis Streams
	streamID, err := redisclient.PublishJSONToStream(context.Background(), c.redisClient, c.config.Trap.Stream, trap)
	if err != nil {
		c.logger.Error("Failed to publish to Redis Streams",
			zap.String("stream", c.config.Trap.Stream),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	c.logger.Info("Published trap to Redis Streams",
		zap.String("source_ip", sourceIP),
		zap.String("stream", c.config.Trap.Stream),
		zap.String("stream_id", streamID),
	)

	return nil
}
