package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	APIBaseURL     string
	RedisHost      string
	RedisPassword  string
	SessionSecret  string
	SecureCookies  bool
	CORSOrigins    []string
	PageSize       int
	GatewayTimeout time.Duration
}

// Load charge .env s'il existe puis lit la configuration depuis l'environnement
func Load() *Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3001"), "/"),
		RedisHost:      getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SecureCookies:  strings.ToLower(os.Getenv("SECURE_COOKIES")) == "true",
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		PageSize:       getEnvInt("PAGE_SIZE", 10),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
