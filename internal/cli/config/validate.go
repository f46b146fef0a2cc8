package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProductionPath returns the absolute path of the compiled config tree.
func (c *Config) ProductionPath() string {
	return filepath.Join(c.RepoRoot, c.ProductionDir)
}

// ValidateLayout checks that the repository holds a production tree. Only
// commands that build indexes call it, so help and completion keep working
// from anywhere.
func (c *Config) ValidateLayout() error {
	dir := c.ProductionPath()
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("production tree does not exist: %s\nHint: run from a config repository root or point -C at one", dir)
	}
	if err != nil {
		return fmt.Errorf("production tree not readable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("production tree is not a directory: %s", dir)
	}
	return nil
}
