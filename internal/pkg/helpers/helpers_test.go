package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Info(t *testing.T) {
	tests := []struct {
		name              string
		total             int64
		page, size        int
		wantPage, wantAll int
	}{
		{"exact pages", 20, 2, 10, 2, 2},
		{"partial last page", 21, 3, 10, 3, 3},
		{"page past the end is clamped", 5, 4, 10, 1, 1},
		{"empty first page", 0, 1, 10, 1, 1},
		{"empty result clamps later pages", 0, 3, 10, 1, 1},
		{"defaults for bad input", 30, 0, 0, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Page{Number: tt.page, Size: tt.size}.Info(tt.total)
			assert.Equal(t, tt.wantPage, info.CurrentPage)
			assert.Equal(t, tt.wantAll, info.TotalPages)
			assert.Equal(t, tt.total, info.TotalItems)
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	parse := func(query string) Page {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/students"+query, nil)
		return PageFromQuery(c)
	}

	assert.Equal(t, Page{Number: DefaultPage, Size: DefaultPageSize}, parse(""))
	assert.Equal(t, Page{Number: 3, Size: 25}, parse("?page=3&size=25"))
	assert.Equal(t, Page{Number: DefaultPage, Size: DefaultPageSize}, parse("?page=-1&size=1000"))
	assert.Equal(t, Page{Number: DefaultPage, Size: DefaultPageSize}, parse("?page=two"))
}

func TestPageOf(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, PageOf(items, Page{Number: 2, Size: 2}))
	assert.Equal(t, []int{5}, PageOf(items, Page{Number: 3, Size: 2}))
	assert.Empty(t, PageOf(items, Page{Number: 4, Size: 2}))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestParseAndFormatDate(t *testing.T) {
	s := "2004-05-17"
	d, err := ParseDate(&s)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.May, d.Month())
	assert.Equal(t, s, FormatDate(d))

	blank := ""
	d, err = ParseDate(&blank)
	assert.NoError(t, err)
	assert.Nil(t, d)

	bad := "17/05/2004"
	_, err = ParseDate(&bad)
	assert.Error(t, err)

	assert.Equal(t, "", FormatDate(nil))
}

func TestStartOfDay(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	got := StartOfDay(time.Date(2025, 6, 2, 1, 30, 0, 0, nairobi))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	d, err := ParseDate(strPtr("2025-06-01"))
	require.NoError(t, err)
	assert.True(t, d.Equal(got))
}

func strPtr(s string) *string { return &s }
