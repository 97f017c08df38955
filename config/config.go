package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"punchpass"`

	// Google Sheets 台账配置
	SheetID              string `env:"GOOGLE_SHEET_ID"`         // 必填，考勤表的 spreadsheet ID
	SheetTab             string `env:"GOOGLE_SHEET_TAB" envDefault:"Sheet1"`
	GoogleServiceAccount string `env:"GOOGLE_SERVICE_ACCOUNT"`  // 必填，service account 的 JSON 凭证

	// 二维码授权配置
	QRAuthCode string `env:"QR_AUTH_CODE"` // 必填，扫码后比对的固定授权串

	// 考勤时区：today 的分界线由它决定，必须显式配置而不是依赖服务器 locale
	AttendanceTimezone string `env:"ATTENDANCE_TIMEZONE" envDefault:"UTC"`

	// Redis 配置（互斥锁与限流，可选）
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"ppass"`

	// PostgreSQL 配置（审计流水，可选）
	AuditEnabled       bool   `env:"AUDIT_ENABLED" envDefault:"false"`
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"punchpass"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`

	// RabbitMQ 配置（考勤事件广播，可选）
	QueueEnabled     bool   `env:"QUEUE_ENABLED" envDefault:"false"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// Snowflake ID 生成器配置（审计事件 ID）
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`

	// 速率限制配置, 滑动窗口参数在中间件内使用
	RateLimitEnabled      bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitWindow       int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // 窗口时长（秒）
	RateLimitMaxRequests  int  `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"120"`  // 窗口内最大请求数
	RateLimitBlockSeconds int  `env:"RATE_LIMIT_BLOCK_SECONDS" envDefault:"300"` // 超限后的阻塞时长（秒）
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 在服务启动时调用，缺少必填项直接拒绝启动。
// 这里只校验，不做 Fatal，调用方决定如何退出。
func Validate() error {
	if Cfg.SheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required")
	}

	if Cfg.GoogleServiceAccount == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT is required (service account JSON)")
	}

	if Cfg.QRAuthCode == "" {
		return fmt.Errorf("QR_AUTH_CODE is required")
	}

	if _, err := time.LoadLocation(Cfg.AttendanceTimezone); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE %q is not a valid IANA zone: %w", Cfg.AttendanceTimezone, err)
	}

	if Cfg.AuditEnabled && Cfg.PostgreSQLHost == "" {
		log.Printf("WARN: AUDIT_ENABLED is set but POSTGRESQL_HOST is empty, audit trail will not work")
	}

	if Cfg.QueueEnabled && Cfg.RabbitMQAddr == "" {
		log.Printf("WARN: QUEUE_ENABLED is set but RABBITMQ_ADDR is empty, event publishing will not work")
	}

	return nil
}

// Location 返回考勤时区，配置已在启动时校验过。
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AttendanceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
