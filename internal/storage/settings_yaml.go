package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"minitimer/internal/ui/preferences"
)

const (
	settingsFileName = "settings.yaml"
	databaseFileName = "minitimer.db"
)

type yamlSettings struct {
	DatabasePath       string `yaml:"database_path"`
	DefaultWorkspaceID uint64 `yaml:"default_workspace_id" validate:"omitempty,gt=0"`
	DurationFormat     string `yaml:"duration_format" validate:"omitempty,oneof=improved decimal"`
	RecentEntries      int    `yaml:"recent_entries" validate:"gte=0,lte=1000"`
	Debug              bool   `yaml:"debug"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads preferences from an explicit path.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	settings.DatabasePath = filepath.Join(filepath.Dir(configPath), databaseFileName)

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	if err := validator.New().Struct(fileData); err != nil {
		return settings, fmt.Errorf("validate settings: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes preferences to an explicit path.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		DatabasePath:       settings.DatabasePath,
		DefaultWorkspaceID: settings.DefaultWorkspaceID,
		DurationFormat:     settings.DurationFormat,
		RecentEntries:      settings.RecentEntries,
		Debug:              settings.Debug,
	}
	if err := validator.New().Struct(fileData); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns where settings for appName are stored.
func SettingsPath(appName string) (string, error) {
	return resolveConfigPath(appName)
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.DatabasePath != "" {
		settings.DatabasePath = fileData.DatabasePath
	}
	if fileData.DefaultWorkspaceID > 0 {
		settings.DefaultWorkspaceID = fileData.DefaultWorkspaceID
	}
	if fileData.DurationFormat != "" {
		settings.DurationFormat = fileData.DurationFormat
	}
	if fileData.RecentEntries > 0 {
		settings.RecentEntries = fileData.RecentEntries
	}

	settings.Debug = fileData.Debug
}

// ResolveSettings loads settings from configPath, or from the default
// location for appName when configPath is empty, and applies a database
// path override. It returns the settings file path that was used.
func ResolveSettings(appName, configPath, databaseOverride string) (preferences.Settings, string, error) {
	if configPath == "" {
		resolved, err := resolveConfigPath(appName)
		if err != nil {
			return preferences.DefaultSettings(), "", err
		}
		configPath = resolved
	}

	settings, err := LoadSettingsFile(configPath)
	if err != nil {
		return settings, configPath, err
	}
	if databaseOverride != "" {
		settings.DatabasePath = databaseOverride
	}
	return settings, configPath, nil
}
