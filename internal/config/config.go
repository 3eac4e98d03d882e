// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"development"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitConnection        `yaml:"rabbit_connection"`
	SMTPConnection          `yaml:"smtp_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Entitlement             `yaml:"entitlement"`
	PaymentGateway          `yaml:"payment_gateway"`
	TaxRegimes              `yaml:"tax_regimes"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"10"`
	RateBurst   int           `yaml:"rate_burst" env-default:"20"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// RabbitConnection структура для настройки подключения к RabbitMQ
type RabbitConnection struct {
	RabbitAddr string        `yaml:"addr"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTPConnection структура для настройки SMTP транспорта уведомлений
type SMTPConnection struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port" env-default:"587"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"password"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Entitlement описывает условия freemium-доступа: лимит бесплатных запросов
// и параметры премиум-доступа. Все значения задаются конфигом, не кодом.
type Entitlement struct {
	FreeQueriesLimit    int     `yaml:"free_queries_limit" env-default:"5"`
	PremiumPrice        float64 `yaml:"premium_price" env-default:"15.00"`
	PremiumCurrency     string  `yaml:"premium_currency" env-default:"PEN"`
	PremiumValidityDays int     `yaml:"premium_validity_days" env-default:"30"`
}

// PaymentGateway описывает параметры обращения к платежному шлюзу.
type PaymentGateway struct {
	Mode           string        `yaml:"mode" env-default:"sandbox"` // sandbox или live
	MerchantID     string        `yaml:"merchant_id"`
	SecretKey      string        `yaml:"secret_key"`
	APIURL         string        `yaml:"api_url"`
	GatewayTimeout time.Duration `yaml:"timeout" env-default:"10s"`
	WebhookSecret  string        `yaml:"webhook_secret"`
}

// TaxRegimes хранит пороги и ставки налоговых режимов.
// Значения меняются регуляторно (ежегодно), поэтому задаются конфигом.
type TaxRegimes struct {
	UITValue float64 `yaml:"uit_value" env-default:"5350"`
	IGVRate  float64 `yaml:"igv_rate" env-default:"0.18"`
	NuevoRUS `yaml:"nuevo_rus"`
	RER      `yaml:"rer"`
	RMT      `yaml:"rmt"`
}

// NuevoRUS — режим с фиксированным месячным платежом.
type NuevoRUS struct {
	MaxIncome    float64 `yaml:"max_income" env-default:"8000"`
	LowThreshold float64 `yaml:"low_threshold" env-default:"5000"`
	LowAmount    float64 `yaml:"low_amount" env-default:"20"`
	HighAmount   float64 `yaml:"high_amount" env-default:"50"`
}

// RER — режим с процентом от месячного дохода.
type RER struct {
	MaxAnnualIncome float64 `yaml:"max_annual_income" env-default:"525000"`
	TaxRate         float64 `yaml:"tax_rate" env-default:"0.015"`
}

// RMT — режим с прогрессивной месячной ставкой; пороги выражены в UIT.
type RMT struct {
	MaxAnnualIncomeUIT    float64 `yaml:"max_annual_income_uit" env-default:"1700"`
	LowAnnualThresholdUIT float64 `yaml:"low_annual_threshold_uit" env-default:"300"`
	MonthlyLowRate        float64 `yaml:"monthly_low_rate" env-default:"0.01"`
	MonthlyHighRate       float64 `yaml:"monthly_high_rate" env-default:"0.015"`
	AnnualThresholdUIT    float64 `yaml:"annual_threshold_uit" env-default:"15"`
	AnnualLowRate         float64 `yaml:"annual_low_rate" env-default:"0.10"`
	AnnualHighRate        float64 `yaml:"annual_high_rate" env-default:"0.295"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
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
