package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nbowman189/vitruvian/models"
)

var DB *gorm.DB

type Config struct {
	Mode string // "dev" | "prod"
	Addr string

	JWTSecret string
	TokenTTL  time.Duration

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	AWSRegion string
	SESSender string
	S3Bucket  string
}

// Load reads .env (if present) and the environment into a Config.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Mode:          GetEnv("APP_MODE", "dev"),
		Addr:          GetEnv("APP_ADDR", ":8080"),
		JWTSecret:     GetEnv("JWT_SECRET", ""),
		TokenTTL:      time.Duration(GetEnvAsInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		OpenAIKey:     GetEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: GetEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:   GetEnv("OPENAI_MODEL", "gpt-4o"),
		AWSRegion:     GetEnv("AWS_REGION", "us-east-1"),
		SESSender:     GetEnv("SES_EMAIL", ""),
		S3Bucket:      GetEnv("S3_BUCKET", ""),
	}
}

func InitDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_USER", "postgres"),
		GetEnv("DB_PASSWORD", ""),
		GetEnv("DB_NAME", "vitruvian"),
		GetEnv("DB_PORT", "5432"),
	)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := AutoMigrateAll(db); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	DB = db
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.CheckIn{},
		&models.BehaviorDefinition{},
		&models.BehaviorLog{},
		&models.ConversationLog{},
		&models.Alert{},
	)
}
