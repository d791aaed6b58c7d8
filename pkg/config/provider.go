package config

import "os"

// TokenProvider supplies an API token when the configuration does not carry one
type TokenProvider interface {
	Token() string
}

// EnvTokenProvider reads the token from a single environment variable
type EnvTokenProvider struct {
	Key string
}

// Token returns the value of the configured variable, or of
// REPLICATE_API_TOKEN when Key is empty
func (p EnvTokenProvider) Token() string {
	key := p.Key
	if key == "" {
		key = EnvToken
	}
	return os.Getenv(key)
}

// StaticTokenProvider always returns the same token
type StaticTokenProvider string

// Token implements TokenProvider
func (p StaticTokenProvider) Token() string { return string(p) }

// ResolveToken fills c.Token from p when it is empty. The provider is
// consulted at most once.
func (c Config) ResolveToken(p TokenProvider) Config {
	if c.Token != "" || p == nil {
		return c
	}
	c.Token = p.Token()
	return c
}
