package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database *Database
	Bus      *Bus
	Redis    *Redis
	HTTP     *HTTP
	Payment  *Payment
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type Bus struct {
	URL string `env:"NATS_URL"`
}

type Redis struct {
	Addr string `env:"REDIS_ADDR"`
}

// HTTP is the ops endpoint (health, metrics). The service API itself is
// served over the bus.
type HTTP struct {
	HostString string `env:"OPS_ADDRESS"`
}

type Payment struct {
	Currency string `env:"PAYMENT_CURRENCY"`
}

func NewConfig() (*Config, error) {
	var db Database
	var bus Bus
	var redis Redis
	var http HTTP
	var payment Payment
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&bus.URL, "n", "nats://localhost:4222", "NATS server URL")
	flag.StringVar(&redis.Addr, "c", "localhost:6379", "Redis address")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "Ops HTTP endpoint")
	flag.StringVar(&payment.Currency, "u", "usd", "Settlement currency")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&bus)
	if err != nil {
		return nil, fmt.Errorf("error parsing bus config: %w", err)
	}
	err = env.Parse(&redis)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&payment)
	if err != nil {
		return nil, fmt.Errorf("error parsing payment config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	config := Config{
		Database: &db,
		Bus:      &bus,
		Redis:    &redis,
		HTTP:     &http,
		Payment:  &payment,
		App:      &app,
	}

	return &config, nil
}
