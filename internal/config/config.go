package config

import (
	"fmt"
	"os"
	"path/filepath"

	"colshift/internal/logger"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Batch  BatchConfig  `toml:"batch"`
	Insert InsertConfig `toml:"insert"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

type BatchConfig struct {
	InputDirectory  string `toml:"input_directory"`
	OutputDirectory string `toml:"output_directory"`
}

// InsertConfig describes the column insertion applied by insert-all and
// used as the default for insert.
type InsertConfig struct {
	SheetIndex int    `toml:"sheet_index"`
	Column     string `toml:"column"`
	Workers    int    `toml:"workers"`
}

type UIConfig struct {
	ColumnsPerRow int `toml:"columns_per_row"`
	RowsPerPage   int `toml:"rows_per_page"`
}

type LogConfig struct {
	Directory string `toml:"directory"`
	File      string `toml:"file"`
	Level     string `toml:"level"`
}

// Default returns the configuration written when no config file exists.
func Default() *Config {
	return &Config{
		Batch: BatchConfig{
			InputDirectory:  "data/input",
			OutputDirectory: "data/output",
		},
		Insert: InsertConfig{
			SheetIndex: 0,
			Column:     "A",
			Workers:    1,
		},
		UI: UIConfig{
			ColumnsPerRow: 6,
			RowsPerPage:   4,
		},
		Log: LogConfig{
			Directory: "logs",
			File:      "colshift.log",
			Level:     "info",
		},
	}
}

// LoadConfig loads configuration from the specified config file path
func LoadConfig(configPath string) (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig := Default()
		if err := SaveConfig(configPath, defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		logger.Info("Created default config file", "path", configPath)
		return defaultConfig, nil
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	config.applyDefaults()

	logger.Info("Loaded configuration", "path", configPath)
	return &config, nil
}

// applyDefaults fills fields left empty in the file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Batch.InputDirectory == "" {
		c.Batch.InputDirectory = def.Batch.InputDirectory
	}
	if c.Batch.OutputDirectory == "" {
		c.Batch.OutputDirectory = def.Batch.OutputDirectory
	}
	if c.Insert.Column == "" {
		c.Insert.Column = def.Insert.Column
	}
	if c.Insert.Workers == 0 {
		c.Insert.Workers = def.Insert.Workers
	}
	if c.UI.ColumnsPerRow == 0 {
		c.UI.ColumnsPerRow = def.UI.ColumnsPerRow
	}
	if c.UI.RowsPerPage == 0 {
		c.UI.RowsPerPage = def.UI.RowsPerPage
	}
	if c.Log.Directory == "" {
		c.Log.Directory = def.Log.Directory
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
