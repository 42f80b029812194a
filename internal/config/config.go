package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	App         struct {
		Timezone       string   `env:"TIMEZONE" envDefault:"Asia/Ho_Chi_Minh"`
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	} `envPrefix:"APP_"`
	Server struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
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
	InitialManager struct {
		Username string `env:"USERNAME" envDefault:"quanly"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"Quản lý"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_MANAGER_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"123456"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required,notEmpty"`
		Queue          string `env:"QUEUE" envDefault:"notification_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"3"`
	} `envPrefix:"REDIS_"`
	Guard struct {
		Backend        string `env:"BACKEND" envDefault:"memory"` // memory | redis
		LockDurationMS int    `env:"LOCK_DURATION_MS" envDefault:"2000"`
	} `envPrefix:"GUARD_"`
	LaborCost struct {
		FullTimeRate   int64 `env:"FULL_TIME_RATE" envDefault:"30000"`
		CasualRate     int64 `env:"CASUAL_RATE" envDefault:"24000"`
		DefaultRevenue int64 `env:"DEFAULT_REVENUE" envDefault:"10000000"`
	} `envPrefix:"LABOR_COST_"`
	Holiday struct {
		ProviderURL string `env:"PROVIDER_URL"`
		Timeout     int    `env:"TIMEOUT" envDefault:"5"`
	} `envPrefix:"HOLIDAY_"`
}

func LoadConfig() (*Config, error) {
	// .env 文件只在本地开发时存在，找不到不算错误
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (cfg *Config) GuardLockDuration() time.Duration {
	return time.Duration(cfg.Guard.LockDurationMS) * time.Millisecond
}
