package config

import (
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	// Predefined admin credentials; seeded on first login.
	AdminEmail string
	AdminPass  string

	// Mention batch.
	BatchInterval  time.Duration
	FetchTags      []string
	FetchPerPage   int
	MinConfidence  float64
	IndicatorWords []string

	// Ranking cache.
	SweepInterval   time.Duration
	MaxRankingBooks int
	RankingTTLs     map[string]time.Duration

	// Digest email; key is 32 bytes for AES-256, base64 in env, optional.
	DigestTopN          int
	DigestEncryptionKey []byte
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("MONGODB_DB", "stackshelf"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPass:       getEnv("ADMIN_PASSWORD", "password"),
		BatchInterval:   getDuration("BATCH_INTERVAL", 1*time.Hour),
		FetchTags:       getList("FETCH_TAGS", []string{"books", "programming"}),
		FetchPerPage:    getInt("FETCH_PER_PAGE", 30),
		MinConfidence:   getFloat("MATCH_MIN_CONFIDENCE", 0.5),
		IndicatorWords:  getList("MATCH_INDICATOR_WORDS", nil),
		SweepInterval:   getDuration("RANKING_SWEEP_INTERVAL", 1*time.Hour),
		MaxRankingBooks: getInt("RANKING_MAX_BOOKS", 1000),
		RankingTTLs: map[string]time.Duration{
			"week":  getDuration("RANKING_TTL_WEEK", 1*time.Hour),
			"month": getDuration("RANKING_TTL_MONTH", 3*time.Hour),
			"year":  getDuration("RANKING_TTL_YEAR", 6*time.Hour),
			"all":   getDuration("RANKING_TTL_ALL", 12*time.Hour),
		},
		DigestTopN: getInt("DIGEST_TOP_N", 10),
	}
	if k := getEnv("DIGEST_ENCRYPTION_KEY", ""); k != "" {
		key, err := base64.StdEncoding.DecodeString(k)
		if err == nil && len(key) == 32 {
			cfg.DigestEncryptionKey = key
		} else {
			log.Println("warning: DIGEST_ENCRYPTION_KEY is not 32 bytes base64; smtp password will be stored in plaintext")
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

// getDuration parses values like "30m" or "2h". Zero disables a job, so
// "0" is accepted.
func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// RequiredEnvVars are checked at startup; the app exits if any are unset.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
}

// ValidateEnv checks that all required env vars are set and that the JWT
// secret has been changed from the default. Calls log.Fatal on failure.
func ValidateEnv() {
	var missing []string
	for _, key := range RequiredEnvVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	if os.Getenv("JWT_SECRET") == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
}
