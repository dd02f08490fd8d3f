package pagination

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, target string) Pagination {
	t.Helper()
	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = ParseFromRequest(c)
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestParseFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"defaults", "/items", Pagination{Page: 1, Limit: 10, Offset: 0}},
		{"explicit", "/items?page=3&limit=5", Pagination{Page: 3, Limit: 5, Offset: 10}},
		{"negative values clamp", "/items?page=-1&limit=0", Pagination{Page: 1, Limit: 10, Offset: 0}},
		{"garbage values clamp", "/items?page=x&limit=y", Pagination{Page: 1, Limit: 10, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.target))
		})
	}
}

func TestResponse(t *testing.T) {
	body := Response(Pagination{Page: 2, Limit: 10, Total: 25}, []int{1, 2, 3})

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded struct {
		Meta struct {
			CurrentPage int   `json:"current_page"`
			PerPage     int   `json:"per_page"`
			TotalItems  int64 `json:"total_items"`
			TotalPages  int64 `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 2, decoded.Meta.CurrentPage)
	assert.Equal(t, int64(25), decoded.Meta.TotalItems)
	assert.Equal(t, int64(3), decoded.Meta.TotalPages)
}
