package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Srv      *Serviceconfig
	App      *Appconfig
	Log      *Loggerconfig
	Pricing  *Pricingconfig
	Sweeper  *Sweeperconfig
}

type DBconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RabbitMqconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Serviceconfig struct {
	DispatchServicePort string
}

type Appconfig struct {
	JwtSecret string
}

type Loggerconfig struct {
	Level string
}

// Rateconfig is one row of the vehicle-class rate table.
type Rateconfig struct {
	Base  float64
	PerKm float64
}

type Pricingconfig struct {
	Classes map[string]Rateconfig
}

type Sweeperconfig struct {
	// CronSpec is a robfig/cron spec with a seconds field.
	CronSpec string
	// PendingTTLMinutes is how long a PENDING order may stay unclaimed
	// before the sweeper cancels it.
	PendingTTLMinutes int
}

func New() (*Config, error) {
	// .env is optional, real deployments pass the environment directly
	_ = godotenv.Load()

	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("invalid %v, using default %v\n", key, def)
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			fmt.Printf("invalid %v, using default %v\n", key, def)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "routa_user"),
			Password: getEnv("DB_PASSWORD", "routa_pass"),
			Database: getEnv("DB_NAME", "routa_db"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Srv: &Serviceconfig{
			DispatchServicePort: getEnv("DISPATCH_SERVICE_PORT", "3000"),
		},
		App: &Appconfig{
			JwtSecret: getEnv("JWT_SECRET", "dev-secret-do-not-use"),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		Pricing: &Pricingconfig{
			Classes: map[string]Rateconfig{
				"BIKE": {
					Base:  getEnvFloat("PRICING_BIKE_BASE", 300),
					PerKm: getEnvFloat("PRICING_BIKE_PER_KM", 70),
				},
				"CAR": {
					Base:  getEnvFloat("PRICING_CAR_BASE", 500),
					PerKm: getEnvFloat("PRICING_CAR_PER_KM", 100),
				},
				"VAN": {
					Base:  getEnvFloat("PRICING_VAN_BASE", 800),
					PerKm: getEnvFloat("PRICING_VAN_PER_KM", 150),
				},
			},
		},
		Sweeper: &Sweeperconfig{
			CronSpec:          getEnv("SWEEPER_CRON", "0 * * * * *"),
			PendingTTLMinutes: getEnvInt("SWEEPER_PENDING_TTL_MINUTES", 120),
		},
	}

	return cnf, nil
}
