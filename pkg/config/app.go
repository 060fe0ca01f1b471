package config

import "time"

// AppConfig holds runtime configuration for the publishing API.
type AppConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	FrontendURL        string
}

// LoadAppConfig constructs an AppConfig from environment variables.
func LoadAppConfig() AppConfig {
	return AppConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://inkwell:inkwell@db:5432/inkwell?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		TokenTTL:           GetHours("TOKEN_TTL_HOURS", 7*24*time.Hour),
		GoogleClientID:     GetString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetString("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   GetString("OAUTH_REDIRECT_URL", "http://localhost:8000/auth/google/callback"),
		FrontendURL:        GetString("FRONTEND_URL", "http://localhost:5173"),
	}
}
