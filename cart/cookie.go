package cart

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	GuestCookieName   = "guest_cart"
	guestCookieMaxAge = 60 * 60 * 24 * 7 // 7 days
)

// DecodeGuestCart parses "variantId:qty,variantId:qty". Malformed tokens are skipped.
func DecodeGuestCart(raw string) map[uint]int {
	items := map[uint]int{}
	if strings.TrimSpace(raw) == "" {
		return items
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return items
	}
	for _, part := range strings.Split(decoded, ",") {
		kv := strings.Split(part, ":")
		if len(kv) != 2 {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(kv[0]), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil || qty <= 0 {
			continue
		}
		items[uint(id)] = qty
	}
	return items
}

// EncodeGuestCart is the inverse of DecodeGuestCart, ordered by variant id.
// The result is not escaped; gin escapes cookie values itself.
func EncodeGuestCart(items map[uint]int) string {
	ids := make([]uint, 0, len(items))
	for id, qty := range items {
		if id > 0 && qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10)+":"+strconv.Itoa(items[id]))
	}
	return strings.Join(parts, ",")
}

func ReadGuestCart(c *gin.Context) map[uint]int {
	raw, err := c.Cookie(GuestCookieName)
	if err != nil {
		return map[uint]int{}
	}
	return DecodeGuestCart(raw)
}

func WriteGuestCart(c *gin.Context, items map[uint]int) {
	encoded := EncodeGuestCart(items)
	if encoded == "" {
		ClearGuestCart(c)
		return
	}
	c.SetCookie(GuestCookieName, encoded, guestCookieMaxAge, "/", "", false, false)
}

func ClearGuestCart(c *gin.Context) {
	c.SetCookie(GuestCookieName, "", -1, "/", "", false, false)
}
