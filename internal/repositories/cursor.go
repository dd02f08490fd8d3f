package repositories

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Transaction pages use a keyset cursor on the row id rather than
// offset/limit, so concurrent appends cannot shift or duplicate pages.

func encodeCursor(lastID uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("tx:%d", lastID)))
}

func decodeCursor(cursor string) (uint, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor")
	}
	s := string(raw)
	if !strings.HasPrefix(s, "tx:") {
		return 0, fmt.Errorf("malformed cursor")
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "tx:"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor")
	}
	return uint(id), nil
}
