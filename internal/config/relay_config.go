package config

import "os"

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	AppEnv                string
	LogLevel              string
	DatabaseURL           string
	RabbitMQURL           string
	NotificationQueueName string
	HealthPort            string
}

func LoadRelayConfig() *RelayConfig {
	LoadDotEnv()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		AppEnv:                envStr("APP_ENV", "development"),
		LogLevel:              envStr("LOG_LEVEL", "info"),
		DatabaseURL:           dbURL,
		RabbitMQURL:           rabbitURL,
		NotificationQueueName: envStr("NOTIFICATION_QUEUE_NAME", "rescue.notifications"),
		HealthPort:            envStr("RELAY_HEALTH_PORT", "8081"),
	}
}

// NotifierConfig holds configuration for the e-mail notifier.
type NotifierConfig struct {
	AppEnv                string
	LogLevel              string
	RabbitMQURL           string
	NotificationQueueName string
	StaffEmail            string
	HealthPort            string
	SMTP                  SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS is opportunistic unless RequireTLS is set.
	RequireTLS bool
}

func LoadNotifierConfig() *NotifierConfig {
	LoadDotEnv()

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		panic("SMTP_HOST environment variable is required")
	}

	return &NotifierConfig{
		AppEnv:                envStr("APP_ENV", "development"),
		LogLevel:              envStr("LOG_LEVEL", "info"),
		RabbitMQURL:           rabbitURL,
		NotificationQueueName: envStr("NOTIFICATION_QUEUE_NAME", "rescue.notifications"),
		StaffEmail:            os.Getenv("STAFF_NOTIFICATION_EMAIL"),
		HealthPort:            envStr("NOTIFIER_HEALTH_PORT", "8082"),
		SMTP: SMTPConfig{
			Host:       host,
			Port:       envInt("SMTP_PORT", 587),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			From:       envStr("SMTP_FROM", "no-reply@pawsrescue.org"),
			RequireTLS: envBool("SMTP_REQUIRE_TLS", false),
		},
	}
}
