package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the monitor
type Config struct {
	Server    ServerConfig
	Telemetry TelemetryConfig
	Gate      GateConfig
	Smoothing SmoothingConfig
	History   HistoryConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// ServerConfig holds all HTTP-server-related configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// TelemetryConfig holds the live-feed connection configuration.
// OverrideURL, when set, is raced alongside the URL derived from
// Host/Port/Path.
type TelemetryConfig struct {
	OverrideURL  string
	Host         string
	Port         string
	Path         string
	UseTLS       bool
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	PingInterval time.Duration
}

// GateConfig holds the wet/dry gate thresholds. The heuristics are
// approximate domain constants, not physical invariants; they are
// configurable so deployments can tune them against real probes.
type GateConfig struct {
	WetTTL         time.Duration
	TurbWetMaxNTU  float64
	TurbVeryDryNTU float64
	PHWetMin       float64
	PHWetMax       float64
	ConductWetMin  float64
	TDSWetMin      float64
}

// SmoothingConfig holds the display-smoothing parameters
type SmoothingConfig struct {
	Alpha    float64
	Deadband DeadbandConfig
}

// DeadbandConfig holds the per-sensor minimum delta before a displayed
// value is updated
type DeadbandConfig struct {
	PH            float64
	Turbidez      float64
	TDS           float64
	Temperatura   float64
	Conductividad float64
	ORP           float64
}

// HistoryConfig holds the rolling history store configuration
type HistoryConfig struct {
	MaxRecords    int
	StoragePath   string
	RemoteEnabled bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey              string
	ExpirationMinutes      int
	RefreshExpirationHours int
}

// AuthConfig holds the dashboard login credentials
type AuthConfig struct {
	Username string
	Password string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from environment variables and config files
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if err = godotenv.Load("../../.env"); err != nil {
			log.Println("Warning: .env file not found or could not be loaded.")
		} else {
			log.Println(".env file loaded successfully from project root.")
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/aqualink-monitor")

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readTimeout", "30s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "5s")

	viper.SetDefault("telemetry.host", "localhost")
	viper.SetDefault("telemetry.port", "1880")
	viper.SetDefault("telemetry.path", "/ws/sensores")
	viper.SetDefault("telemetry.useTLS", false)
	viper.SetDefault("telemetry.backoffBase", "500ms")
	viper.SetDefault("telemetry.backoffMax", "30s")
	viper.SetDefault("telemetry.pingInterval", "25s")

	viper.SetDefault("gate.wetTTL", "15s")
	viper.SetDefault("gate.turbWetMaxNTU", 1200.0)
	viper.SetDefault("gate.turbVeryDryNTU", 5000.0)
	viper.SetDefault("gate.phWetMin", 3.0)
	viper.SetDefault("gate.phWetMax", 10.0)
	viper.SetDefault("gate.conductWetMin", 5.0)
	viper.SetDefault("gate.tdsWetMin", 5.0)

	viper.SetDefault("smoothing.alpha", 0.35)
	viper.SetDefault("smoothing.deadband.ph", 0.02)
	viper.SetDefault("smoothing.deadband.turbidez", 0.2)
	viper.SetDefault("smoothing.deadband.tds", 2.0)
	viper.SetDefault("smoothing.deadband.temperatura", 0.1)
	viper.SetDefault("smoothing.deadband.conductividad", 3.0)
	viper.SetDefault("smoothing.deadband.orp", 3.0)

	viper.SetDefault("history.maxRecords", 10000)
	viper.SetDefault("history.storagePath", "data/sensor_history.json")
	viper.SetDefault("history.remoteEnabled", true)

	viper.SetDefault("jwt.expirationMinutes", 30)
	viper.SetDefault("jwt.refreshExpirationHours", 24)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Bind environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("MONITOR")

	viper.BindEnv("server.port", "MONITOR_PORT")
	viper.BindEnv("telemetry.overrideURL", "MONITOR_WS_URL")
	viper.BindEnv("telemetry.host", "MONITOR_WS_HOST")
	viper.BindEnv("telemetry.port", "MONITOR_WS_PORT")
	viper.BindEnv("history.storagePath", "MONITOR_HISTORY_PATH")
	viper.BindEnv("jwt.secretKey", "JWT_SECRET_KEY")
	viper.BindEnv("auth.username", "DASHBOARD_USER")
	viper.BindEnv("auth.password", "DASHBOARD_PASSWORD")

	// Try to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file: %s", err)
		}
		log.Println("No config file found. Using environment variables and defaults.")
	}

	var config Config

	config.Server = ServerConfig{
		Port:            viper.GetString("server.port"),
		ReadTimeout:     mustDuration("server.readTimeout"),
		WriteTimeout:    mustDuration("server.writeTimeout"),
		ShutdownTimeout: mustDuration("server.shutdownTimeout"),
	}

	config.Telemetry = TelemetryConfig{
		OverrideURL:  viper.GetString("telemetry.overrideURL"),
		Host:         viper.GetString("telemetry.host"),
		Port:         viper.GetString("telemetry.port"),
		Path:         viper.GetString("telemetry.path"),
		UseTLS:       viper.GetBool("telemetry.useTLS"),
		BackoffBase:  mustDuration("telemetry.backoffBase"),
		BackoffMax:   mustDuration("telemetry.backoffMax"),
		PingInterval: mustDuration("telemetry.pingInterval"),
	}

	config.Gate = GateConfig{
		WetTTL:         mustDuration("gate.wetTTL"),
		TurbWetMaxNTU:  viper.GetFloat64("gate.turbWetMaxNTU"),
		TurbVeryDryNTU: viper.GetFloat64("gate.turbVeryDryNTU"),
		PHWetMin:       viper.GetFloat64("gate.phWetMin"),
		PHWetMax:       viper.GetFloat64("gate.phWetMax"),
		ConductWetMin:  viper.GetFloat64("gate.conductWetMin"),
		TDSWetMin:      viper.GetFloat64("gate.tdsWetMin"),
	}

	config.Smoothing = SmoothingConfig{
		Alpha: viper.GetFloat64("smoothing.alpha"),
		Deadband: DeadbandConfig{
			PH:            viper.GetFloat64("smoothing.deadband.ph"),
			Turbidez:      viper.GetFloat64("smoothing.deadband.turbidez"),
			TDS:           viper.GetFloat64("smoothing.deadband.tds"),
			Temperatura:   viper.GetFloat64("smoothing.deadband.temperatura"),
			Conductividad: viper.GetFloat64("smoothing.deadband.conductividad"),
			ORP:           viper.GetFloat64("smoothing.deadband.orp"),
		},
	}

	config.History = HistoryConfig{
		MaxRecords:    viper.GetInt("history.maxRecords"),
		StoragePath:   viper.GetString("history.storagePath"),
		RemoteEnabled: viper.GetBool("history.remoteEnabled"),
	}

	config.JWT = JWTConfig{
		SecretKey:              viper.GetString("jwt.secretKey"),
		ExpirationMinutes:      viper.GetInt("jwt.expirationMinutes"),
		RefreshExpirationHours: viper.GetInt("jwt.refreshExpirationHours"),
	}

	config.Auth = AuthConfig{
		Username: viper.GetString("auth.username"),
		Password: viper.GetString("auth.password"),
	}

	config.Logging = LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
	}

	// Validate required configuration
	if config.JWT.SecretKey == "" {
		log.Fatal("JWT secret key is required")
	}

	if config.Telemetry.OverrideURL == "" && config.Telemetry.Host == "" {
		log.Fatal("Telemetry host or override URL is required")
	}

	return &config
}

func mustDuration(key string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		log.Fatalf("Invalid duration for %s: %s", key, err)
	}
	return d
}
