// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProd значение env для боевого окружения.
const EnvProd = "prod"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PayPal                  PayPal      `yaml:"paypal"`
	OpenWeather             OpenWeather `yaml:"openweather"`
	RabbitMQ                RabbitMQ    `yaml:"rabbitmq"`
	SMTP                    SMTP        `yaml:"smtp"`
	Support                 Support     `yaml:"support"`
	Scheduler               Scheduler   `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"2"`
	RateBurst   int           `yaml:"rate_burst" env-default:"5"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress      string        `yaml:"addressredis"`
	RedisPassword     string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser         string        `yaml:"user"`
	RedisDB           int           `yaml:"db"`
	RedisMaxRetries   int           `yaml:"max_retries"`
	RedisDialTimeout  time.Duration `yaml:"dial_timeout"`
	RedisTimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// PayPal настройки интеграции с PayPal Subscriptions.
type PayPal struct {
	APIBaseURL              string        `yaml:"api_base_url" env-default:"https://api-m.sandbox.paypal.com"`
	ClientID                string        `yaml:"client_id" env:"PAYPAL_CLIENT_ID"`
	ClientSecret            string        `yaml:"client_secret" env:"PAYPAL_CLIENT_SECRET"`
	WebhookID               string        `yaml:"webhook_id" env:"PAYPAL_WEBHOOK_ID"`
	SkipWebhookVerification bool          `yaml:"skip_webhook_verification" env:"SKIP_WEBHOOK_VERIFICATION" env-default:"false"`
	EnableTestWebhook       bool          `yaml:"enable_test_webhook" env-default:"false"`
	BrandName               string        `yaml:"brand_name" env-default:"AstraWeather"`
	AppURL                  string        `yaml:"app_url" env:"APP_URL"`
	Timeout                 time.Duration `yaml:"timeout" env-default:"10s"`
}

// OpenWeather настройки клиента погодного API.
type OpenWeather struct {
	BaseURL  string        `yaml:"base_url" env-default:"https://api.openweathermap.org"`
	APIKey   string        `yaml:"api_key" env:"OPENWEATHER_API_KEY"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

// RabbitMQ настройки подключения к брокеру.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP настройки почтового транспорта.
type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" env-default:"587"`
	User string `yaml:"user" env:"SMTP_USER"`
	Pass string `yaml:"pass" env:"SMTP_PASS"`
	From string `yaml:"from"`
}

// Support адрес, на который пересылаются срочные обращения.
type Support struct {
	Email string `yaml:"email"`
}

// Scheduler настройки планировщика истечения подписок.
type Scheduler struct {
	Interval time.Duration `yaml:"interval" env-default:"1h"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// Validate проверяет сочетания настроек, которые нельзя включать в боевом окружении.
func (c *Config) Validate() error {
	if c.Env != EnvProd {
		return nil
	}
	if c.PayPal.SkipWebhookVerification {
		return fmt.Errorf("paypal.skip_webhook_verification must not be enabled in %s", EnvProd)
	}
	if c.PayPal.EnableTestWebhook {
		return fmt.Errorf("paypal.enable_test_webhook must not be enabled in %s", EnvProd)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"PayPal:\n"+
			"  APIBaseURL: %s\n"+
			"  SkipWebhookVerification: %t\n"+
			"OpenWeather:\n"+
			"  BaseURL: %s\n"+
			"  CacheTTL: %s\n",
		c.Env,
		c.RedisAddress,
		c.RedisDB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.PayPal.APIBaseURL,
		c.PayPal.SkipWebhookVerification,
		c.OpenWeather.BaseURL,
		c.OpenWeather.CacheTTL,
	)
}
