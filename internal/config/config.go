package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	HTTPPort          string
	JWTSecret         string
	ResearcherUser    string
	ResearcherPass    string
	KnowledgePath     string
	StatementsPerPage int
}

func Load() *Config {
	return &Config{
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "emotional_clarity"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:          getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		ResearcherUser:    getEnv("RESEARCHER_USERNAME", "researcher"),
		ResearcherPass:    getEnv("RESEARCHER_PASSWORD", "password123"),
		KnowledgePath:     getEnv("KNOWLEDGE_PATH", "data/knowledgebase.json"),
		StatementsPerPage: getEnvInt("STATEMENTS_PER_PAGE", 12),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
