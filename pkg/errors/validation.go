package errors

import (
	"math"
	"slices"
	"strings"
)

// MaxGridCells bounds the number of nodes a generated grid may hold.
// Larger grids are valid graphs but are never useful for the interactive
// commands and mostly indicate a typo in a config file.
const MaxGridCells = 1 << 20

// ValidateGridSize validates grid dimensions.
//
// Validation rules:
//   - Columns and rows must be positive
//   - cols*rows must not exceed MaxGridCells
//   - Spacing must be a positive finite number
func ValidateGridSize(cols, rows int, spacing float64) error {
	if cols <= 0 || rows <= 0 {
		return New(ErrCodeInvalidConfig, "grid size must be positive, got %dx%d", cols, rows)
	}
	if cols > MaxGridCells/rows {
		return New(ErrCodeInvalidConfig, "grid too large (max %d cells)", MaxGridCells)
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return New(ErrCodeInvalidConfig, "grid spacing must be a positive number, got %v", spacing)
	}
	return nil
}

// ValidateCell checks that (col, row) lies inside a cols×rows grid.
func ValidateCell(name string, col, row, cols, rows int) error {
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return New(ErrCodeInvalidConfig, "%s cell (%d,%d) is outside the %dx%d grid", name, col, row, cols, rows)
	}
	return nil
}

// ValidateThreshold validates an obstacle density threshold in [-1, 1].
// OpenSimplex noise is bounded by that interval, so values outside it either
// block every cell or none.
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < -1 || v > 1 {
		return New(ErrCodeInvalidConfig, "obstacle threshold must be within [-1, 1], got %v", v)
	}
	return nil
}

// MaxAttempts bounds the obstacle layouts tried by one planning run.
const MaxAttempts = 256

// ValidateAttempts validates the number of obstacle layouts to try.
func ValidateAttempts(n int) error {
	if n < 1 || n > MaxAttempts {
		return New(ErrCodeInvalidConfig, "obstacle attempts must be within [1, %d], got %d", MaxAttempts, n)
	}
	return nil
}

// MaxResolution is the largest accepted trajectory doubling level (2^16 segments).
const MaxResolution = 16

// ValidateResolution validates a trajectory doubling level.
func ValidateResolution(level int) error {
	if level < 0 || level > MaxResolution {
		return New(ErrCodeInvalidConfig, "resolution must be within [0, %d], got %d", MaxResolution, level)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
// The comparison is case-insensitive.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}
