package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// UnitType represents the dimension a measurement belongs to.
type UnitType string

const (
	UnitTypeVolume  UnitType = "volume"
	UnitTypeWeight  UnitType = "weight"
	UnitTypeUnknown UnitType = "unknown"
)

// Measurement is a value extracted from title text, normalized to a base unit.
type Measurement struct {
	Value    float64
	Unit     string // normalized unit: ml, g
	Type     UnitType
	Original string
}

var (
	volumePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|milliliters?|l|litres?|liters?|fl\.?\s?oz|fluid ounces?)\b`)
	weightPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(g|grams?|kg|kilograms?|oz|ounces?)\b`)
)

// ExtractVolume finds the first volume measurement in text, converting l->ml per spec.
func ExtractVolume(text string) (Measurement, bool) {
	m := volumePattern.FindStringSubmatch(text)
	if m == nil {
		return Measurement{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Measurement{}, false
	}
	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "l") && !strings.Contains(unit, "ml") && !strings.Contains(unit, "milli"):
		value *= 1000
	case strings.Contains(unit, "oz"):
		value *= 29.5735
	}
	return Measurement{Value: value, Unit: "ml", Type: UnitTypeVolume, Original: m[0]}, true
}

// ExtractWeight finds the first weight measurement in text, converting kg->g per spec.
func ExtractWeight(text string) (Measurement, bool) {
	m := weightPattern.FindStringSubmatch(text)
	if m == nil {
		return Measurement{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Measurement{}, false
	}
	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "kg") || strings.HasPrefix(unit, "kilo"):
		value *= 1000
	case strings.Contains(unit, "oz") || strings.Contains(unit, "ounce"):
		value *= 28.3495
	}
	return Measurement{Value: value, Unit: "g", Type: UnitTypeWeight, Original: m[0]}, true
}
