package record

import (
	"strconv"
	"strings"
)

// DeriveFlag classifies a value against a reference-range string. It is a
// total function: every input yields exactly one of normal/low/high.
// Critical is only ever set explicitly upstream, never derived here.
//
// Supported range forms:
//
//	"min-max"  low if value < min, high if value > max, else normal
//	">N"       low if value <= N, else normal
//	"<N"       high if value >= N, else normal
//	missing or "N/A", or a non-numeric value: normal
func DeriveFlag(value, referenceRange string) Flag {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return FlagNormal
	}

	r := strings.TrimSpace(referenceRange)
	if r == "" || strings.EqualFold(r, "N/A") {
		return FlagNormal
	}

	switch {
	case strings.HasPrefix(r, ">"):
		min, err := parseBound(r[1:])
		if err != nil {
			return FlagNormal
		}
		if v <= min {
			return FlagLow
		}
		return FlagNormal

	case strings.HasPrefix(r, "<"):
		max, err := parseBound(r[1:])
		if err != nil {
			return FlagNormal
		}
		if v >= max {
			return FlagHigh
		}
		return FlagNormal

	case strings.Contains(r, "-"):
		parts := strings.SplitN(r, "-", 2)
		min, errMin := parseBound(parts[0])
		max, errMax := parseBound(parts[1])
		if errMin != nil || errMax != nil {
			return FlagNormal
		}
		if v < min {
			return FlagLow
		}
		if v > max {
			return FlagHigh
		}
		return FlagNormal
	}

	return FlagNormal
}

func parseBound(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
