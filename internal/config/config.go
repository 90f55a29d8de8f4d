package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // 派发请求会按行数单独延长
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required,notEmpty"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		Queue          string `env:"QUEUE" envDefault:"assignment_message_queue"`
	} `envPrefix:"RABBITMQ_"`
	SMTP struct {
		Host        string `env:"HOST"`
		Port        int    `env:"PORT" envDefault:"465"`
		Username    string `env:"USERNAME"`
		Password    string `env:"PASSWORD"`
		From        string `env:"FROM"`
		DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SMTP_"`
	Schedule struct {
		MinRows         int `env:"MIN_ROWS" envDefault:"30"`
		DraftExpiration int `env:"DRAFT_EXPIRATION" envDefault:"86400"` // 1 天
	} `envPrefix:"SCHEDULE_"`
	Dispatch struct {
		Mode            string `env:"MODE" envDefault:"smtp"` // smtp | queue
		SendTimeout     int    `env:"SEND_TIMEOUT" envDefault:"15"`
		DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	} `envPrefix:"DISPATCH_"`
}

const (
	DispatchModeSMTP  = "smtp"
	DispatchModeQueue = "queue"
)

var ErrUnknownDispatchMode = errors.New("DISPATCH_MODE must be smtp or queue")

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Dispatch.Mode != DispatchModeSMTP && cfg.Dispatch.Mode != DispatchModeQueue {
		return nil, ErrUnknownDispatchMode
	}

	return cfg, nil
}

// SendTimeout 单条消息的发送超时：queue 模式只是投递到 RabbitMQ，使用 RABBITMQ_PUBLISH_TIMEOUT
func (cfg *Config) SendTimeout() time.Duration {
	if cfg.Dispatch.Mode == DispatchModeQueue {
		return time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second
	}
	return time.Duration(cfg.Dispatch.SendTimeout) * time.Second
}
