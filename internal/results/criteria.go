// internal/results/criteria.go
package results

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultCategoryThreshold is the per-category pass rate required when the
	// suite does not set one.
	DefaultCategoryThreshold = 0.7
	// DefaultCategoryRatioThreshold is the fraction of passing categories
	// required for an overall pass.
	DefaultCategoryRatioThreshold = 0.7

	metaThresholdDefault = "category_threshold_default"
	metaRatioThreshold   = "category_pass_ratio_threshold"
	metaThresholds       = "category_thresholds"
)

// SuiteMeta is the free-form meta block of a suite as decoded from JSON.
type SuiteMeta map[string]any

// PassCriteria holds the thresholds used to judge categories and models.
type PassCriteria struct {
	DefaultCategoryThreshold float64            `json:"category_threshold_default" yaml:"category_threshold_default"`
	CategoryRatioThreshold   float64            `json:"category_pass_ratio_threshold" yaml:"category_pass_ratio_threshold"`
	CategoryThresholds       map[string]float64 `json:"category_thresholds,omitempty" yaml:"category_thresholds,omitempty"`
}

// DefaultCriteria returns the criteria used when a suite carries no meta.
func DefaultCriteria() PassCriteria {
	return PassCriteria{
		DefaultCategoryThreshold: DefaultCategoryThreshold,
		CategoryRatioThreshold:   DefaultCategoryRatioThreshold,
		CategoryThresholds:       map[string]float64{},
	}
}

// CriteriaFromMeta derives pass criteria from suite meta. Values that are not
// finite numbers (or numeric strings) fall back to the defaults.
func CriteriaFromMeta(meta SuiteMeta) PassCriteria {
	c := DefaultCriteria()
	if meta == nil {
		return c
	}
	if v, ok := finiteNumber(meta[metaThresholdDefault]); ok {
		c.DefaultCategoryThreshold = v
	}
	if v, ok := finiteNumber(meta[metaRatioThreshold]); ok {
		c.CategoryRatioThreshold = v
	}
	if m, ok := meta[metaThresholds].(map[string]any); ok {
		for id, raw := range m {
			if v, ok := finiteNumber(raw); ok {
				c.CategoryThresholds[id] = v
			}
		}
	}
	return c
}

// ResolveThreshold returns the threshold configured for categoryID, or the
// default category threshold.
func ResolveThreshold(categoryID string, c PassCriteria) float64 {
	if v, ok := c.CategoryThresholds[categoryID]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return c.DefaultCategoryThreshold
}

// finiteNumber coerces a decoded JSON value to a finite float.
func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
