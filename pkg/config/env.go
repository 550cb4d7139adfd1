package config

// Environment names recognized by the configuration loader.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// IsProductionLike reports whether the environment requires strict validation.
func IsProductionLike(environment string) bool {
	return environment == EnvProduction || environment == EnvStaging
}
