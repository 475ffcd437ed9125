package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// loadEnvFiles loads KEY=VALUE pairs from the given files if they exist.
// Variables already present in the environment are left untouched.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	AppName    string     `yaml:"app_name"`
	APIBaseURL string     `yaml:"api_base_url"`
	Texts      *fileTexts `yaml:"texts"`
}

type fileTexts struct {
	Progress           []string       `yaml:"progress"`
	ProgressFallback   string         `yaml:"progress_fallback"`
	StageErrors        map[int]string `yaml:"stage_errors"`
	StageErrorFallback string         `yaml:"stage_error_fallback"`
	ConnectionError    string         `yaml:"connection_error"`
	NotPDF             string         `yaml:"not_pdf"`
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}
