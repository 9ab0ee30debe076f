package normalize

import "strings"

// SplitLocation splits a raw location string on commas: first segment is
// the city, last is the country, anything between is kept as state. A
// string without commas is all city.
func SplitLocation(raw string) (city, state, country string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ""
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], ", "), parts[len(parts)-1]
	}
}
