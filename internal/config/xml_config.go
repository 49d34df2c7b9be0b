// Package config provides XML-based configuration management for air-gapped deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PnidStudio"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Drawing defaults for new sessions
	Drawing DrawingConfig `xml:"Drawing"`

	// Advisor service configuration
	Advisor AdvisorConfig `xml:"Advisor"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	ExportsDirectory string `xml:"ExportsDirectory"`
	TempDirectory    string `xml:"TempDirectory"`
	EnablePersistence bool  `xml:"EnablePersistence"`
}

// DrawingConfig contains the defaults applied to new drawing sessions
type DrawingConfig struct {
	SheetSize              string `xml:"SheetSize"`
	GridSpacingMM          int    `xml:"GridSpacingMM"`
	MarginMM               int    `xml:"MarginMM"`
	CrossingPolicy         string `xml:"CrossingPolicy"`
	MaxRouteExpansions     int    `xml:"MaxRouteExpansions"`
	RulesFile              string `xml:"RulesFile"`
	DefaultClient          string `xml:"DefaultClient"`
	DefaultProject         string `xml:"DefaultProject"`
	SessionTimeoutMinutes  int    `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
}

// AdvisorConfig contains the optional review service settings
type AdvisorConfig struct {
	Endpoint       string `xml:"Endpoint"`
	APIKey         string `xml:"APIKey"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
	ExportRetainCount    int    `xml:"ExportRetainCount"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			ExportsDirectory: "./data/exports",
			TempDirectory:    "./data/temp",
			EnablePersistence: true,
		},
		Drawing: DrawingConfig{
			SheetSize:              "A3",
			GridSpacingMM:          10,
			MarginMM:               30,
			CrossingPolicy:         "allow",
			MaxRouteExpansions:     20000,
			RulesFile:              "",
			DefaultClient:          "EPS Pvt. Ltd.",
			DefaultProject:         "Process Engineering",
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Advisor: AdvisorConfig{
			Endpoint:       "",
			APIKey:         "",
			TimeoutSeconds: 30,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "256MB",
			ExportRetainCount:    50,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- P&ID Studio Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	// Advisor overrides keep credentials out of the config file
	if endpoint := os.Getenv("ADVISOR_ENDPOINT"); endpoint != "" {
		c.Advisor.Endpoint = endpoint
	}
	if key := os.Getenv("ADVISOR_API_KEY"); key != "" {
		c.Advisor.APIKey = key
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.ExportsDirectory) {
		c.Storage.ExportsDirectory = filepath.Join(configDir, c.Storage.ExportsDirectory)
	}
	if !filepath.IsAbs(c.Storage.TempDirectory) {
		c.Storage.TempDirectory = filepath.Join(configDir, c.Storage.TempDirectory)
	}
	if c.Drawing.RulesFile != "" && !filepath.IsAbs(c.Drawing.RulesFile) {
		c.Drawing.RulesFile = filepath.Join(configDir, c.Drawing.RulesFile)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetExportDir returns the absolute exports directory path
func (c *AppConfig) GetExportDir() string {
	return c.Storage.ExportsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.ExportsDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
