// Package config loads mediasort settings from TOML.
//
// Values are decoded over Default(), then normalized (tilde expansion,
// absolute paths, environment fallbacks) and validated. The taxonomy and
// stage vocabulary are compiled once during validation and exposed as
// domain values.
package config
