package middlewares

import "strings"

func nameOrDefault(val, fallback string) string {
	if val = strings.TrimSpace(val); val != "" {
		return val
	}
	return fallback
}
