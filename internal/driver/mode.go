package driver

import (
	"fmt"
	"strings"

	"automv/internal/services"
)

// LipSyncMode selects the optional lip-sync sub-stage.
type LipSyncMode string

const (
	LipSyncNone   LipSyncMode = "none"
	LipSyncJimeng LipSyncMode = "jimeng"
	LipSyncWan    LipSyncMode = "wan"
)

var lipSyncLabels = map[LipSyncMode]string{
	LipSyncNone:   "None",
	LipSyncJimeng: "Jimeng (fast)",
	LipSyncWan:    "Wan2.2 (slow, cheap)",
}

// LipSyncModes lists modes in display order.
func LipSyncModes() []LipSyncMode {
	return []LipSyncMode{LipSyncNone, LipSyncJimeng, LipSyncWan}
}

// Label returns the human-facing name used in menus and the run header.
func (m LipSyncMode) Label() string {
	if label, ok := lipSyncLabels[m]; ok {
		return label
	}
	return string(m)
}

// ParseLipSyncMode accepts a short token or a display label. Blank input is
// LipSyncNone.
func ParseLipSyncMode(raw string) (LipSyncMode, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "", value == "none", value == "off":
		return LipSyncNone, nil
	case value == "jimeng", strings.HasPrefix(value, "jimeng "), value == "fast":
		return LipSyncJimeng, nil
	case value == "wan", value == "wan2.2", strings.HasPrefix(value, "wan2.2 "), value == "slow":
		return LipSyncWan, nil
	}
	return "", services.Wrap(services.ErrValidation, "driver", "parse lip-sync",
		fmt.Sprintf("unknown lip-sync mode %q", raw), nil)
}

// Resolution is the output resolution handed to final assembly.
type Resolution string

const (
	Resolution480p Resolution = "480p"
	Resolution720p Resolution = "720p"

	// DefaultResolution is used when a caller does not pick one.
	DefaultResolution = Resolution480p
)

// NormalizeResolution maps anything other than 480p to 720p.
func NormalizeResolution(raw string) Resolution {
	if strings.TrimSpace(raw) == string(Resolution480p) {
		return Resolution480p
	}
	return Resolution720p
}
