package config

const EnvPrefix = "WISHLIST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "WISHLIST_APP_ENV"
	EnvPort       = "WISHLIST_APP_PORT"
	EnvDBDSN      = "WISHLIST_DB_DSN"
	EnvDBHost     = "WISHLIST_DB_HOST"
	EnvDBUser     = "WISHLIST_DB_USER"
	EnvDBName     = "WISHLIST_DB_NAME"
	EnvRedisURL   = "WISHLIST_REDIS_URL"
	EnvJWTSecret  = "WISHLIST_JWT_SECRET"
	EnvJWTIssuer  = "WISHLIST_JWT_ISSUER"
	EnvJWTExpMins = "WISHLIST_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
