//go:build linux

package harvesters

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/termstat/termstat/internal/models"
)

// batterySysfsGlob is overridable in tests.
var batterySysfsGlob = "/sys/class/power_supply/BAT*"

// Batteries reads charge state from sysfs. Boxes without a battery simply
// report an empty list.
func (g *GopsutilSource) Batteries(ctx context.Context) ([]models.BatteryHarvest, error) {
	paths, err := filepath.Glob(batterySysfsGlob)
	if err != nil {
		return nil, &DomainError{Domain: "battery", Err: err}
	}

	var harvests []models.BatteryHarvest
	for _, base := range paths {
		capBytes, err := os.ReadFile(filepath.Join(base, "capacity"))
		if err != nil {
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(string(capBytes)), 64)
		if err != nil {
			continue
		}

		h := models.BatteryHarvest{Percent: pct}
		if stateBytes, err := os.ReadFile(filepath.Join(base, "status")); err == nil {
			h.State = strings.TrimSpace(string(stateBytes))
		}

		// time_to_empty_now is minutes on most kernels; absent while charging.
		if ttBytes, err := os.ReadFile(filepath.Join(base, "time_to_empty_now")); err == nil {
			if minutes, err := strconv.ParseInt(strings.TrimSpace(string(ttBytes)), 10, 64); err == nil {
				h.SecondsRemaining = minutes * 60
			}
		}

		harvests = append(harvests, h)
	}

	return harvests, nil
}
