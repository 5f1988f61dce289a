//go:build !linux

package harvesters

import (
	"context"

	"github.com/termstat/termstat/internal/models"
)

// Batteries is not implemented outside Linux; the domain is reported as
// permanently absent for the session.
func (g *GopsutilSource) Batteries(ctx context.Context) ([]models.BatteryHarvest, error) {
	return nil, &DomainError{Domain: "battery", Err: ErrUnsupported}
}
