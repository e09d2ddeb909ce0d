package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var errConfigIsDir = errors.New("config file is dir")

func (c *Config) loadFile(name string) error {
	filename, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	finfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if finfo.IsDir() {
		return errConfigIsDir
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// fields absent from the file keep their defaults
	err = yaml.Unmarshal(yamlFile, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", filename, err)
	}

	return nil
}
