// Package filters implements the allow/deny name lists used to exclude
// disks, sensors, network interfaces, and processes from collection.
package filters

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/termstat/termstat/internal/models"
)

// Filter is a compiled allow/deny name list. Immutable once built;
// consulted read-only by every collector that supports exclusion.
type Filter struct {
	rules         []*regexp.Regexp
	isListIgnored bool
}

const regexPrefix = "regex:"

// New compiles a filter from its configuration. A malformed pattern is a
// construction-time error; evaluation never fails.
func New(cfg models.FilterConfig) (*Filter, error) {
	f := &Filter{isListIgnored: cfg.IsListIgnored}

	for _, raw := range cfg.Patterns {
		expr := raw
		if strings.HasPrefix(raw, regexPrefix) {
			expr = strings.TrimPrefix(raw, regexPrefix)
		} else {
			expr = regexp.QuoteMeta(raw)
		}
		if cfg.WholeWord {
			expr = `\b(?:` + expr + `)\b`
		}
		if !cfg.CaseSensitive {
			expr = `(?i)` + expr
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", raw, err)
		}
		f.rules = append(f.rules, re)
	}

	return f, nil
}

// KeepEntry reports whether the named entry survives the filter.
//
// Denylist mode (is_list_ignored=true) keeps an entry iff no rule matches,
// so an empty rule list keeps everything. Allowlist mode keeps an entry iff
// some rule matches, so an empty rule list keeps nothing.
func (f *Filter) KeepEntry(name string) bool {
	if f == nil {
		return true
	}
	for _, re := range f.rules {
		if re.MatchString(name) {
			return !f.isListIgnored
		}
	}
	return f.isListIgnored
}

// Set bundles the per-domain filters handed to the collector.
type Set struct {
	Network     *Filter
	Disk        *Filter
	Temperature *Filter
	Process     *Filter
}

// NewSet compiles every configured filter, failing fast on the first bad
// pattern.
func NewSet(cfg *models.MonitorConfig) (*Set, error) {
	var (
		s   Set
		err error
	)
	if s.Network, err = New(cfg.Filters.Network); err != nil {
		return nil, fmt.Errorf("network filter: %w", err)
	}
	if s.Disk, err = New(cfg.Filters.Disk); err != nil {
		return nil, fmt.Errorf("disk filter: %w", err)
	}
	if s.Temperature, err = New(cfg.Filters.Temperature); err != nil {
		return nil, fmt.Errorf("temperature filter: %w", err)
	}
	if s.Process, err = New(cfg.Filters.Process); err != nil {
		return nil, fmt.Errorf("process filter: %w", err)
	}
	return &s, nil
}
