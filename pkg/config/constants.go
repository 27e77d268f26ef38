package config

const (
	// EnvPrefix scopes every environment variable this service reads.
	EnvPrefix = "LEADFOLIO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "LEADFOLIO_APP_ENV"
	EnvPort          = "LEADFOLIO_APP_PORT"
	EnvDBDSN         = "LEADFOLIO_DB_DSN"
	EnvDBHost        = "LEADFOLIO_DB_HOST"
	EnvDBUser        = "LEADFOLIO_DB_USER"
	EnvDBName        = "LEADFOLIO_DB_NAME"
	EnvRedisURL      = "LEADFOLIO_REDIS_URL"
	EnvSessionSecret = "LEADFOLIO_SESSION_SECRET"
	EnvMagicSecret   = "LEADFOLIO_MAGIC_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
