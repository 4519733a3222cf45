package loader

import "strings"

// splitLocation separates "scheme://rest". A location without "://" has
// an empty scheme.
func splitLocation(location string) (scheme, rest string) {
	if before, after, ok := strings.Cut(location, "://"); ok {
		return before, after
	}
	return "", location
}

func keyOf(location string) string {
	_, rest := splitLocation(location)
	return rest
}
