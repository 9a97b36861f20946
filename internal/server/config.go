package server

import "fmt"

// Config holds the HTTP listener configuration.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DevMode bool   `mapstructure:"dev_mode"`
	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For header is believed. Empty means the header is ignored.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DefaultConfig listens on all interfaces, port 8080.
func DefaultConfig() Config {
	return Config{Host: "0.0.0.0", Port: 8080}
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that every trusted proxy entry parses.
func (c *Config) Validate() error {
	_, err := NewCallerKeys(c.TrustedProxies)
	return err
}

// CORSConfig holds the cross-origin allow-list.
type CORSConfig struct {
	// AllowedOrigins are matched exactly.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// AllowExtensions also admits any chrome-extension:// origin.
	AllowExtensions bool `mapstructure:"allow_extensions"`
}

// Allows reports whether origin is on the allow-list.
func (c CORSConfig) Allows(origin string) bool {
	if c.AllowExtensions && extensionOrigin.MatchString(origin) {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// DefaultCORSConfig admits local development origins and browser extensions.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:  []string{"http://localhost:3000"},
		AllowExtensions: true,
	}
}
