package common

const (
	// MaxRequestBody limits JSON request bodies for write endpoints.
	MaxRequestBody = 1 << 20
	// DefaultPageSize is the fallback page length for list endpoints.
	DefaultPageSize = 10
	// MaxPageSize caps client-requested page lengths.
	MaxPageSize = 100
)
