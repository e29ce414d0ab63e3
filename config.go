package inkwell

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the site configuration, loaded from a yaml file and optionally
// overridden by CLI flags in the binary.
type Config struct {
	SiteTitle       string `yaml:"siteTitle"`
	SiteDescription string `yaml:"siteDescription"`
	Copyright       string `yaml:"copyright"`
	// BlogURL is the public base URL including the trailing slash.
	BlogURL string `yaml:"blogUrl"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db"`
	// DefaultTTL is the Cache-Control max-age for responses, in seconds.
	DefaultTTL int `yaml:"defaultTtl"`
	// UseCache and UseFallback select the read paths. Disabling both leaves
	// no way to serve content and fails validation.
	UseCache    bool `yaml:"useCache"`
	UseFallback bool `yaml:"useFallback"`
	// RefreshInterval is the cache reload period in seconds, 0 disables.
	RefreshInterval int    `yaml:"refreshInterval"`
	StaticDir       string `yaml:"staticDir"`
	HitsDir         string `yaml:"hitsDir"`
	LogFile         string `yaml:"logFile"`
}

// DefaultConfig returns a runnable local configuration.
func DefaultConfig() Config {
	return Config{
		SiteTitle:       "Inkwell",
		SiteDescription: "A personal blog",
		Copyright:       "Content licensed CC BY-SA 4.0",
		BlogURL:         "http://localhost:8000/",
		Port:            8000,
		DBPath:          "blog.db",
		DefaultTTL:      3600,
		UseCache:        true,
		UseFallback:     true,
		RefreshInterval: 300,
		StaticDir:       "static",
		HitsDir:         ".",
	}
}

// LoadConfig reads a yaml config file over the defaults.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if !c.UseCache && !c.UseFallback {
		return errors.New("config: cache and store fallback are both disabled, nothing can serve content")
	}
	if c.BlogURL == "" {
		return errors.New("config: blogUrl must be set")
	}
	return nil
}
