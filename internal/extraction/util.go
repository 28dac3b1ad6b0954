package extraction

import (
	"strconv"
	"strings"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toFloat parses a JSON-LD/meta value into a float, tolerating "$1,234.50"-style text.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return 0, false
		}
		text = strings.NewReplacer("$", "", ",", "").Replace(text)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
