package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

const (
	// DefaultLimit is used when a caller does not ask for a page size.
	DefaultLimit = 50
	// MaxLimit caps any requested page size.
	MaxLimit = 500
)

// NormalizeLimit clamps a requested page size to (0, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeEntryToken creates a cursor positioned after the given ledger entry number.
func EncodeEntryToken(entryNumber int64) string {
	return base64.StdEncoding.EncodeToString([]byte("e|" + strconv.FormatInt(entryNumber, 10)))
}

// DecodeEntryToken parses a cursor produced by EncodeEntryToken.
// An empty token decodes to zero, the start of the ledger.
func DecodeEntryToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[0] != "e" {
		return 0, fmt.Errorf("invalid pagination token format (split)")
	}
	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid pagination token format (entry number parse)")
	}
	return n, nil
}

// EncodeToken creates a cursor from a billing month and a creation time.
func EncodeToken(billingMonth time.Time, createdAt time.Time) string {
	tokenStr := fmt.Sprintf("%s|%s", billingMonth.Format(timeFormat), createdAt.Format(timeFormat))
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the cursor back into billing month and creation time.
func DecodeToken(token string) (time.Time, time.Time, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (split)")
	}

	billingMonth, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (billing month parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return billingMonth, createdAt, nil
}
