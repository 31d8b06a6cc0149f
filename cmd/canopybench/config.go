package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the bench harness's YAML-loadable configuration, layered under
// whatever flags the caller passes on the command line.
type Config struct {
	BatchSize        int     `yaml:"batch_size"`
	BitpacksPerBatch int     `yaml:"bitpacks_per_batch"`
	Iterations       int     `yaml:"iterations"`
	WordWidth        int     `yaml:"word_width"`
	ProbabilityA     float64 `yaml:"probability_a"`
	ProbabilityB     float64 `yaml:"probability_b"`
	ProbabilityC     float64 `yaml:"probability_c"`
}

func defaultConfig() Config {
	return Config{
		BatchSize:        64,
		BitpacksPerBatch: 64,
		Iterations:       1000,
		WordWidth:        64,
		ProbabilityA:     0.1,
		ProbabilityB:     0.2,
		ProbabilityC:     0.05,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
