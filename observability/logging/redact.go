package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive values in logs.
const RedactedValue = "[REDACTED]"

// Keys that are safe to log verbatim even when passed through MaskField.
var redactionAllowlist = map[string]struct{}{
	"service":        {},
	"env":            {},
	"component":      {},
	"operation":      {},
	"caller":         {},
	"storage_engine": {},
	"archive_driver": {},
}

// IsAllowlisted reports whether key is exempt from redaction.
func IsAllowlisted(key string) bool {
	_, ok := redactionAllowlist[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskField returns an attribute whose value is redacted unless the key is
// allowlisted. Empty values are kept so logs still show what is unset.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
