package cart

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGuestCart(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[uint]int
	}{
		{"empty", "", map[uint]int{}},
		{"plain", "3:2,7:1", map[uint]int{3: 2, 7: 1}},
		{"url encoded", "3%3A2%2C7%3A1", map[uint]int{3: 2, 7: 1}},
		{"bad tokens skipped", "3:2,x:1,9,4:-1,0:5, 5 : 4 ", map[uint]int{3: 2, 5: 4}},
		{"broken escape", "%zz", map[uint]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeGuestCart(tt.raw))
		})
	}
}

func TestEncodeGuestCartIsSortedAndSkipsEmptyLines(t *testing.T) {
	got := EncodeGuestCart(map[uint]int{9: 1, 2: 3, 5: 0})
	assert.Equal(t, "2:3,9:1", got)
	assert.Equal(t, map[uint]int{2: 3, 9: 1}, DecodeGuestCart(got))
}

func TestGuestCookieThroughGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	WriteGuestCart(c, map[uint]int{4: 2})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, GuestCookieName, cookies[0].Name)
	assert.Equal(t, guestCookieMaxAge, cookies[0].MaxAge)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])
	assert.Equal(t, map[uint]int{4: 2}, ReadGuestCart(c2))

	ClearGuestCart(c2)
	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}
