package main

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

const sessionFile = "Kaleigo Session Information"

type sessionConfig struct {
	Prompt  string   `yaml:"Prompt"`
	Preload []string `yaml:"Preload"`
	DumpIR  bool     `yaml:"DumpIR"`
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{Prompt: "ready> "}
}

// loadSessionConfig reads the optional session file from the working
// directory. A missing or unreadable file just means defaults.
func loadSessionConfig() sessionConfig {
	cfg := defaultSessionConfig()

	data, err := ioutil.ReadFile(sessionFile)
	if err != nil {
		return cfg
	}

	return parseSessionConfig(data)
}

func parseSessionConfig(data []byte) sessionConfig {
	cfg := defaultSessionConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultSessionConfig()
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "ready> "
	}

	return cfg
}
