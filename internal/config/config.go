package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	ArtifactBasePath string // emitted certificate PDFs land here

	AuthHMACSecret string

	// Engine policy defaults; each event may override its own policy row.
	DefaultNMin                 int
	DefaultDiscrepancyThreshold float64
	DefaultIncludeScoreOnCert   bool

	SMTPEnabled bool
	SMTPHost    string
	SMTPPort    string
	SMTPFrom    string
	SMTPUser    string
	SMTPPass    string

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		ArtifactBasePath: envOr("ARTIFACT_BASE_PATH", "./data/certificates"),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		DefaultNMin:                 envInt("N_MIN", 5),
		DefaultDiscrepancyThreshold: envFloat("DISCREPANCY_THRESHOLD", 3.0),
		DefaultIncludeScoreOnCert:   envBool("INCLUDE_SCORE_ON_CERT", false),

		SMTPEnabled: envBool("SMTP_ENABLED", false),
		SMTPHost:    os.Getenv("SMTP_HOST"),
		SMTPPort:    envOr("SMTP_PORT", "587"),
		SMTPFrom:    envOr("SMTP_FROM", "eventos@event-soft.local"),
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
