package credentials

// Credentials represents the stored API keys in credentials.toml.
// Key order is preserved: rotation walks the list front to back.
type Credentials struct {
	Version int   `toml:"version"`
	Keys    []Key `toml:"keys"`
}

// Key holds a single generation API key.
type Key struct {
	APIKey string `toml:"api_key"`
}
