package config

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	DefaultConfig = `# Default number of top talkers to report when -t is not given (0 disables).
topTalkers: 0

# Default number of large messages to report when -m is not given (0 disables).
largeMessages: 0

# Descend into subdirectories when the input is a directory.
recursive: false

# Scan this many journal files concurrently (0 or 1 scans sequentially).
workers: 0
`
)

type Config struct {
	TopTalkers    int  `yaml:"topTalkers"`
	LargeMessages int  `yaml:"largeMessages"`
	Recursive     bool `yaml:"recursive"`
	Workers       int  `yaml:"workers"`
}

func LoadConfig(dir, file string) (*Config, error) {
	var config Config

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(filepath.Join(dir, file)); os.IsNotExist(err) {
		if err := WriteDefaultConfig(filepath.Join(dir, file)); err != nil {
			log.Error().Err(err).Msg("Failed to write default config")
			return nil, err
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func WriteDefaultConfig(path string) error {
	return os.WriteFile(path, []byte(DefaultConfig), 0644)
}

func LoadConfigFromBytes(data string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(data), &config); err != nil {
		return nil, err
	}
	return &config, nil
}
