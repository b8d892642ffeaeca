package config

const (
	EnvPrefix = "CARTONQ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN    = "CARTONQ_DB_DSN"
	EnvSheetsID = "CARTONQ_SHEETS_ID"
)
