package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config 陷阱服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// 陷阱服务特定配置
	Trap struct {
		// 网关 MQTT 主题（trap/{source_ip}/data）
		Topics struct {
			Data string
		}

		// Redis Streams 配置
		Stream        string // 网关数据流名称
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int64 // 每次读取的消息数量

		// 最新报警缓存配置
		Cache struct {
			AlertKeyPrefix string // 缓存键前缀，如 "trap:alert:"
			AlertTTL       int    // 缓存 TTL（秒）
		}

		// 未指定操作人时的占位名
		DefaultActor string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "trapwatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "trapwatch")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	// 陷阱服务配置
	cfg.Trap.Topics.Data = getEnv("TRAP_TOPIC", "trap/+/data")
	cfg.Trap.Stream = getEnv("TRAP_STREAM", "trap:data:stream")
	cfg.Trap.ConsumerGroup = getEnv("TRAP_CONSUMER_GROUP", "trapwatch-group")
	cfg.Trap.ConsumerName = getEnv("TRAP_CONSUMER_NAME", "trapwatch-1")
	cfg.Trap.BatchSize = 10
	cfg.Trap.Cache.AlertKeyPrefix = getEnv("CACHE_ALERT_PREFIX", "trap:alert:")
	cfg.Trap.Cache.AlertTTL = 300 // 5分钟
	cfg.Trap.DefaultActor = getEnv("TRAP_DEFAULT_ACTOR", "system")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
