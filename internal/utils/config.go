package utils

import (
	"fmt"

	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/pkg/file"
)

// LoadMonitorConfig reads, parses, and validates the monitor configuration.
// An empty path yields the defaults. Any validation failure is a
// construction-time error and should abort startup before the scheduler runs.
func LoadMonitorConfig(filename string, fileClient file.FileOperations) (*models.MonitorConfig, error) {
	config := models.DefaultMonitorConfig()

	if filename != "" {
		if err := fileClient.ReadYamlFile(filename, config); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor config: %w", err)
	}

	return config, nil
}
