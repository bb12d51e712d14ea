package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trapwatch/internal/config"
	"trapwatch/internal/consumer"
	"trapwatch/internal/database"
	"trapwatch/internal/logger"
	"trapwatch/internal/mqttclient"
	"trapwatch/internal/redisclient"
	"trapwatch/internal/repository"
	"trapwatch/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "trapwatch")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接 PostgreSQL
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// 4. 连接 Redis
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 5. 连接 MQTT
	mqttClient, err := mqttclient.NewClient(&cfg.MQTT, log)
	if err != nil {
		log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	// 6. 组装服务
	trapRepo := repository.NewTrapRepository(db, log)
	trapService := service.NewTrapService(cfg, trapRepo, redisClient, log)

	mqttConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, redisClient, log)
	streamConsumer := consumer.NewStreamConsumer(cfg, redisClient, trapService, log)

	// 7. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. 启动消费者
	errChan := make(chan error, 2)
	go func() {
		if err := mqttConsumer.Start(ctx); err != nil {
			errChan <- fmt.Errorf("mqtt consumer: %w", err)
		}
	}()
	go func() {
		if err := streamConsumer.Start(ctx); err != nil {
			errChan <- fmt.Errorf("stream consumer: %w", err)
		}
	}()

	// 9. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
		mqttConsumer.Stop(context.Background())
	case err := <-errChan:
		log.Fatal("Consumer error", zap.Error(err))
	}

	log.Info("Trap service stopped")
}
