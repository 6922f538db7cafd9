package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	ServerPort      string
	BcryptCost      int
	ShutdownTimeout time.Duration
	Mongo           MongoConfig
	Redis           RedisConfig
	Logging         LoggingConfig
	Socket          SocketConfig
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig enables cross-instance event fan-out when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

type SocketConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

func LoadConfig() (*Config, error) {
	logging := LoggingConfig{
		Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
		Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
		EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
		ServiceName:  envOrDefault("SERVICE_NAME", "fakeso-server"),
	}

	cfg := &Config{
		ServerPort:      envOrDefault("PORT", "8000"),
		BcryptCost:      parseBcryptCost(envOrDefault("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost))),
		ShutdownTimeout: parseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		Mongo: MongoConfig{
			URI:            envOrDefault("MONGODB_URI", "mongodb://127.0.0.1:27017"),
			Database:       envOrDefault("MONGO_DATABASE", "fake_so"),
			ConnectTimeout: parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseInt(envOrDefault("REDIS_DB", "0"), 0),
			Channel:  envOrDefault("REDIS_CHANNEL", "fakeso:events"),
		},
		Logging: logging,
		Socket: SocketConfig{
			SendBuffer:     parseInt(envOrDefault("SOCKET_SEND_BUFFER", "256"), 256),
			MaxMessageSize: int64(parseInt(envOrDefault("SOCKET_MAX_MESSAGE_SIZE", "4096"), 4096)),
			PongWait:       parseDuration(envOrDefault("SOCKET_PONG_WAIT", "60s"), 60*time.Second),
			WriteWait:      parseDuration(envOrDefault("SOCKET_WRITE_WAIT", "10s"), 10*time.Second),
		},
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

// parseBcryptCost clamps the configured cost into the range bcrypt accepts.
func parseBcryptCost(value string) int {
	cost := parseInt(value, bcrypt.DefaultCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
