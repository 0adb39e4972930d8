package usecasecontract

import "time"

// IConfigProvider exposes runtime settings to use cases and handlers.
type IConfigProvider interface {
	GetAppEnv() string
	GetPort() string
	GetStoreDriver() string
	GetMongoURI() string
	GetMongoDBName() string
	GetRedisURL() string
	GetJWTSecret() string
	GetJWTIssuer() string
	GetRateLimitPerSecond() float64
	GetCountsCacheTTL() time.Duration
	GetLivePingInterval() time.Duration
	GetReactedListLimit() int
	GetCORSAllowedOrigins() []string
	GetMemorySeedFile() string
}
