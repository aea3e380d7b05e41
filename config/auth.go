package config

import "os"

// AuthConfig holds the optional JWKS endpoint. Auth middleware is installed
// only when JwksUrl is non-empty.
type AuthConfig struct {
	JwksUrl string
}

func GetAuthConfig() *AuthConfig {
	return &AuthConfig{
		JwksUrl: os.Getenv("JWKS_URL"),
	}
}
