package filters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/models"
)

func mustFilter(t *testing.T, cfg models.FilterConfig) *filters.Filter {
	t.Helper()
	f, err := filters.New(cfg)
	require.NoError(t, err)
	return f
}

func TestFilter_EmptyDenylistKeepsEverything(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{IsListIgnored: true})

	assert.True(t, f.KeepEntry("eth0"))
	assert.True(t, f.KeepEntry(""))
	assert.True(t, f.KeepEntry("anything at all"))
}

func TestFilter_EmptyAllowlistKeepsNothing(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{IsListIgnored: false})

	assert.False(t, f.KeepEntry("eth0"))
	assert.False(t, f.KeepEntry(""))
}

func TestFilter_DenylistRejectsMatches(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"regex:temperature"},
		IsListIgnored: true,
	})

	names := []string{"CPU socket temperature", "wifi_0", "motherboard temperature", "amd gpu"}
	var kept []string
	for _, n := range names {
		if f.KeepEntry(n) {
			kept = append(kept, n)
		}
	}
	assert.Equal(t, []string{"wifi_0", "amd gpu"}, kept)
}

func TestFilter_AllowlistKeepsMatches(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"regex:temperature"},
		IsListIgnored: false,
	})

	assert.True(t, f.KeepEntry("CPU socket temperature"))
	assert.False(t, f.KeepEntry("wifi_0"))
}

func TestFilter_LiteralCaseInsensitive(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"chrome"},
		IsListIgnored: false,
	})

	assert.True(t, f.KeepEntry("Chrome Helper"))
	assert.True(t, f.KeepEntry("chromedriver"))
}

func TestFilter_WholeWord(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"chrome"},
		IsListIgnored: false,
		WholeWord:     true,
	})

	assert.True(t, f.KeepEntry("Chrome Helper"))
	assert.False(t, f.KeepEntry("chromedriver"))
}

func TestFilter_CaseSensitive(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"chrome"},
		IsListIgnored: false,
		CaseSensitive: true,
	})

	assert.False(t, f.KeepEntry("Chrome Helper"))
	assert.True(t, f.KeepEntry("chromedriver"))
}

func TestFilter_LiteralMetaCharsAreQuoted(t *testing.T) {
	f := mustFilter(t, models.FilterConfig{
		Patterns:      []string{"sda[0-9]"},
		IsListIgnored: false,
	})

	assert.True(t, f.KeepEntry("sda[0-9]"))
	assert.False(t, f.KeepEntry("sda1"))
}

func TestFilter_MalformedRegexFailsConstruction(t *testing.T) {
	_, err := filters.New(models.FilterConfig{
		Patterns: []string{"regex:("},
	})
	require.Error(t, err)
}

func TestFilter_NilKeepsEverything(t *testing.T) {
	var f *filters.Filter
	assert.True(t, f.KeepEntry("anything"))
}

func TestNewSet_PropagatesBadPattern(t *testing.T) {
	cfg := models.DefaultMonitorConfig()
	cfg.Filters.Disk.Patterns = []string{"regex:["}

	_, err := filters.NewSet(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk filter")
}
