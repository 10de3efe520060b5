package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Application struct {
	Name        string
	Environment string
	Port        int
	Timeout     time.Duration
	Debug       bool
	BaseURL     string
}

type CatalogAPI struct {
	BaseURL string
	APIKey  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	BootstrapServers string
	ClientID         string
}

type JWT struct {
	PrivateKey []byte
	PublicKey  []byte
}

type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

type GCP struct {
	ProjectID      string
	TasksLocation  string
	ServiceAccount []byte
}

type Monitoring struct {
	OTLPEndpoint string
}

type Config struct {
	Application Application
	CatalogAPI  CatalogAPI
	Redis       Redis
	Kafka       Kafka
	JWT         JWT
	CORS        CORS
	GCP         GCP
	Monitoring  Monitoring
}

var (
	once sync.Once
	c    *Config
)

func Get() *Config {
	once.Do(func() {
		godotenv.Load()

		c = &Config{
			Application: Application{
				Name:        getEnv("APP_NAME", "cp-stock"),
				Environment: getEnv("APP_ENVIRONMENT", "development"),
				Port:        getEnvInt("APP_PORT", 9026),
				Timeout:     time.Duration(getEnvInt("APP_TIMEOUT_SECONDS", 30)) * time.Second,
				Debug:       getEnvBool("APP_DEBUG", false),
				BaseURL:     getEnv("APP_BASE_URL", "http://localhost:9026"),
			},
			CatalogAPI: CatalogAPI{
				BaseURL: getEnv("CATALOG_API_BASE_URL", "http://localhost:9020"),
				APIKey:  getEnv("CATALOG_API_KEY", ""),
			},
			Redis: Redis{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
			Kafka: Kafka{
				BootstrapServers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
				ClientID:         getEnv("KAFKA_CLIENT_ID", "cp-stock"),
			},
			JWT: JWT{
				PrivateKey: readFileEnv("JWT_PRIVATE_KEY_PATH"),
				PublicKey:  readFileEnv("JWT_PUBLIC_KEY_PATH"),
			},
			CORS: CORS{
				AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", "*"),
				AllowedMethods:   getEnvList("CORS_ALLOWED_METHODS", "GET,POST,PATCH,DELETE,OPTIONS"),
				AllowedHeaders:   getEnvList("CORS_ALLOWED_HEADERS", "Authorization,Content-Type"),
				ExposedHeaders:   getEnvList("CORS_EXPOSED_HEADERS", "X-Trace-Id"),
				MaxAge:           getEnvInt("CORS_MAX_AGE", 300),
				AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			},
			GCP: GCP{
				ProjectID:      getEnv("GCP_PROJECT_ID", ""),
				TasksLocation:  getEnv("GCP_TASKS_LOCATION", "europe-west1"),
				ServiceAccount: readFileEnv("GCP_SERVICE_ACCOUNT_PATH"),
			},
			Monitoring: Monitoring{
				OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4318"),
			},
		}
	})

	return c
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvList(key, def string) []string {
	raw := getEnv(key, def)

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func readFileEnv(key string) []byte {
	path := os.Getenv(key)
	if path == "" {
		return nil
	}

	buff, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return buff
}
