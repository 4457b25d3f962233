package config

const (
	EnvPrefix = "PDV"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv        = "PDV_APP_ENV"
	EnvCompanyID     = "PDV_COMPANY_ID"
	EnvDepositID     = "PDV_DEPOSIT_ID"
	EnvLedgerBaseURL = "PDV_LEDGER_BASE_URL"
	EnvJWTSecret     = "PDV_JWT_SECRET"
	EnvJWTIssuer     = "PDV_JWT_ISSUER"
	EnvRedisURL      = "PDV_REDIS_URL"
	EnvJournalDSN    = "PDV_JOURNAL_DSN"
)
