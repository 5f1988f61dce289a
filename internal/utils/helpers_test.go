package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/termstat/termstat/internal/utils"
)

func TestClampRate(t *testing.T) {
	assert.InDelta(t, 250.0, utils.ClampRate(1500, 1000, 2), 0.001)
	assert.Zero(t, utils.ClampRate(1000, 1500, 2)) // counter reset
	assert.Zero(t, utils.ClampRate(1500, 1000, 0)) // zero elapsed
	assert.Zero(t, utils.ClampRate(1000, 1000, 2))
}
