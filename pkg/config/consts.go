package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// BLOODBANK_ tags so the prefix stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names shared between Load, ensureDSN, and tests.
const (
	EnvAppEnv   = "BLOODBANK_APP_ENV"
	EnvPort     = "BLOODBANK_APP_PORT"
	EnvDBDSN    = "BLOODBANK_DB_DSN"
	EnvDBHost   = "BLOODBANK_DB_HOST"
	EnvDBUser   = "BLOODBANK_DB_USER"
	EnvDBName   = "BLOODBANK_DB_NAME"
	EnvRedisURL = "BLOODBANK_REDIS_URL"

	EnvJWTSecret              = "BLOODBANK_JWT_SECRET"
	EnvJWTIssuer              = "BLOODBANK_JWT_ISSUER"
	EnvJWTExpMins             = "BLOODBANK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BLOODBANK_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
