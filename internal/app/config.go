package app

import "os"

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// MetricsAddr — адрес служебного сервера (метрики и health checks).
	MetricsAddr string
	// PostgresDSN — строка подключения; пустая означает in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую; пустой отключает события.
	KafkaBrokers string
	// KafkaTopic — topic для событий заказов.
	KafkaTopic string
}

// DefaultConfig возвращает базовые адреса сервиса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// LoadConfig читает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ERP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ERP_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	return cfg
}
