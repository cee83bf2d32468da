// Package settings remembers the last results file and objective selection
// between runs.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted state.
type Settings struct {
	DirectoryPath string `yaml:"directory_path,omitempty"`
	FileName      string `yaml:"file_name,omitempty"`
	XVar          string `yaml:"x_var,omitempty"`
	YVar          string `yaml:"y_var,omitempty"`
}

// ResultsPath joins DirectoryPath and FileName. Empty when no file was
// remembered.
func (s Settings) ResultsPath() string {
	if s.FileName == "" {
		return ""
	}
	return filepath.Join(s.DirectoryPath, s.FileName)
}

// Remember records path as the last results file.
func (s *Settings) Remember(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	s.DirectoryPath = filepath.Dir(abs)
	s.FileName = filepath.Base(abs)
	return nil
}

// DefaultPath returns settings.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dseframe", "settings.yaml"), nil
}

// Load reads settings from path. A missing file yields zero Settings.
func Load(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path through a temporary file and rename, creating the
// directory if needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
