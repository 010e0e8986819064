package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	code, err := GenerateInviteCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`), code)
}

func TestInviteCodeMatches(t *testing.T) {
	assert.True(t, InviteCodeMatches("abcd-ef01-2345", "abcd-ef01-2345"))
	assert.False(t, InviteCodeMatches("abcd-ef01-2345", "abcd"))
	assert.False(t, InviteCodeMatches("", ""))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query                           string
		wantPage, wantLimit, wantOffset int
	}{
		{query: "page=3&limit=10", wantPage: 3, wantLimit: 10, wantOffset: 20},
		{query: "page=0&limit=1000", wantPage: 1, wantLimit: 100, wantOffset: 0},
		{query: "page=x&limit=-4", wantPage: 1, wantLimit: 20, wantOffset: 0},
		{query: "", wantPage: 1, wantLimit: 20, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/users?"+tt.query, nil)
			p := GetPaginationParams(c)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestNewPaginationResponse(t *testing.T) {
	p := NewPaginationParams(2, 2)
	assert.True(t, NewPaginationResponse(p, 5).HasNext)
	assert.False(t, NewPaginationResponse(p, 4).HasNext)
	assert.Equal(t, int64(4), NewPaginationResponse(p, 4).Total)
}
