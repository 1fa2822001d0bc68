package auth

import "os"

// Config holds token verification settings. Auth is optional: when JWKSURL
// is empty the router mounts no verification middleware, which is how the
// service runs on the clinic's closed LAN.
type Config struct {
	Issuer   string
	JWKSURL  string
	Audience string
}

// LoadConfig reads AUTH_ISSUER, AUTH_JWKS_URL and AUTH_AUD from the
// environment.
func LoadConfig() Config {
	return Config{
		Issuer:   os.Getenv("AUTH_ISSUER"),
		JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
		Audience: os.Getenv("AUTH_AUD"),
	}
}

// Enabled reports whether token verification is configured.
func (c Config) Enabled() bool {
	return c.JWKSURL != ""
}
