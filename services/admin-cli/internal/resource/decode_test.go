package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCategory_Defaults(t *testing.T) {
	now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	c, err := decodeCategory(map[string]any{
		"id":          "65f1c2a9e4b0",
		"name":        "Horror",
		"thumbnail":   "https://cdn.example.com/h.png",
		"seriesCount": float64(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "#CAT65f1c2", c.UniqueID)
	assert.Equal(t, "https://cdn.example.com/h.png", c.Image)
	assert.Equal(t, 12, c.TotalMovies)
	assert.Equal(t, "07/03/2025", c.Date)
	assert.True(t, c.Active)
	assert.Equal(t, "", c.Description)

	c, err = decodeCategory(map[string]any{
		"id":        "a1",
		"uniqueId":  "#CUSTOM",
		"createdAt": "2024-12-20T08:30:00.000Z",
		"isActive":  false,
	})
	require.NoError(t, err)
	assert.Equal(t, "#CUSTOM", c.UniqueID)
	assert.Equal(t, "20/12/2024", c.Date)
	assert.False(t, c.Active)
}

func TestDecodeSeries_Defaults(t *testing.T) {
	s, err := decodeSeries(map[string]any{
		"id":          "abcdefgh",
		"name":        "Dark Tales",
		"releaseDate": "2024-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "#SERabcdef", s.UniqueID)
	assert.Equal(t, "Unknown", s.CategoryName)
	assert.Equal(t, "05/01/2024", s.ReleaseDate)
	assert.Equal(t, "", s.CreatedAt)
	assert.False(t, s.IsTrending)
	assert.True(t, s.IsActive)
}

func TestDecodeEmployee(t *testing.T) {
	e, err := decodeEmployee(map[string]any{
		"id":       float64(3),
		"name":     "Michael Brown",
		"email":    "michael.b@storybox.com",
		"salary":   "65000",
		"isActive": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", e.ID)
	assert.Equal(t, 65000.0, e.Salary)
	assert.False(t, e.Active)
}

func TestDecodeContent(t *testing.T) {
	c, err := decodeContent(map[string]any{
		"id":           "ep1",
		"name":         "Pilot",
		"categoryName": "Drama",
		"views":        float64(1250000),
		"createdAt":    "2024-12-19T00:00:00Z",
		"isTrending":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pilot", c.Title)
	assert.Equal(t, "Drama", c.Category)
	assert.Equal(t, int64(1250000), c.Views)
	assert.Equal(t, "19/12/2024", c.UploadDate)
	assert.True(t, c.Trending)
	assert.True(t, c.Active)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(""))
	assert.Equal(t, "31/01/2025", formatDate("2025-01-31"))
	assert.Equal(t, "not a date", formatDate("not a date"))
}

func TestPrefixedID_Short(t *testing.T) {
	assert.Equal(t, "#CATa1", prefixedID("#CAT", "a1"))
	assert.Equal(t, "#SER", prefixedID("#SER", ""))
}
