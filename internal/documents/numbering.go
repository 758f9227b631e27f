package documents

import (
	"fmt"
	"time"
)

// GenerateNumber produces the client draft number for a new document:
// {prefix}-{tenantID}{DDMMYYYY}{HHMMSS} with an optional millisecond
// suffix for types created in rapid succession. It is a pure function of
// its inputs and deliberately not unique: the backend keeps the
// authoritative number and defends against same-millisecond collisions
// with its own constraint.
func GenerateNumber(prefix string, tenantID int64, now time.Time, withMillis bool) string {
	number := fmt.Sprintf("%s-%d%s", prefix, tenantID, now.Format("02012006150405"))
	if withMillis {
		number += fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	}
	return number
}

// NumberFor generates a draft number using the type's configured prefix
// and millisecond policy.
func NumberFor(t DocumentType, tenantID int64, now time.Time) (string, error) {
	cfg, ok := ConfigFor(t)
	if !ok {
		return "", fmt.Errorf("documents: unknown document type %q", t)
	}
	return GenerateNumber(cfg.Prefix, tenantID, now, cfg.NumberMillis), nil
}
