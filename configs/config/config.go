package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoadConfig will load config attributes from a yaml file. Environment
// variable references in the file are expanded before unmarshalling.
func LoadConfig(cfn string) (*ServiceConfig, error) {

	confContent, err := os.ReadFile(cfn)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", cfn, err)
	}

	confContent = []byte(os.ExpandEnv(string(confContent)))
	sc := ServiceConfig{}

	if err := yaml.Unmarshal(confContent, &sc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file %s: %w", cfn, err)
	}

	if err := validator.New().Struct(&sc); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfn, err)
	}

	return &sc, nil
}
