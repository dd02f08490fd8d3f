package repositories

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, id := range []uint{1, 42, 1<<31 + 7} {
		got, err := decodeCursor(encodeCursor(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestDecodeCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  string
		want    uint
		wantErr bool
	}{
		{"empty means first page", "", 0, false},
		{"not base64", "%%%", 0, true},
		{"wrong prefix", base64.RawURLEncoding.EncodeToString([]byte("wallet:5")), 0, true},
		{"non-numeric id", base64.RawURLEncoding.EncodeToString([]byte("tx:abc")), 0, true},
		{"valid", base64.RawURLEncoding.EncodeToString([]byte("tx:17")), 17, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCursor(tt.cursor)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
