package config

const (
	EnvPrefix = "CARDEALER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CARDEALER_DB_DSN"
	EnvDBHost = "CARDEALER_DB_HOST"
	EnvDBUser = "CARDEALER_DB_USER"
	EnvDBName = "CARDEALER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
