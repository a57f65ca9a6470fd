// Package vnpay signs outbound payment requests for the VNPay redirect gateway
// and reconciles the signed callbacks it sends back.
package vnpay

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/shopspring/decimal"
)

const (
	apiVersion = "2.1.0"
	timeLayout = "20060102150405"
)

// The gateway reads all timestamps as Vietnam local time.
var gatewayZone = time.FixedZone("GMT+7", 7*60*60)

type Gateway struct {
	cfg Config
	now func() time.Time
}

func NewGateway(cfg Config) *Gateway {
	return &Gateway{cfg: cfg, now: time.Now}
}

// PaymentURL is a signed redirect plus the moment the gateway stops accepting it.
type PaymentURL struct {
	URL       string
	ExpiresAt time.Time
}

// MinorUnits is the amount the gateway expects: total x 100, no decimals.
func MinorUnits(total decimal.Decimal) string {
	return total.Mul(decimal.NewFromInt(100)).Round(0).String()
}

// NormalizeIP maps loopback and empty addresses to the IPv4 form the gateway accepts.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if i := strings.Index(ip, ","); i >= 0 {
		ip = strings.TrimSpace(ip[:i])
	}
	if ip == "" {
		return "127.0.0.1"
	}
	if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
		return "127.0.0.1"
	}
	return ip
}

// Params builds the unsigned request for an order.
func (g *Gateway) Params(order models.Order, clientIP string) (map[string]string, time.Time) {
	created := g.now().In(gatewayZone)
	expires := created.Add(g.cfg.expireIn())
	ref := strconv.FormatUint(uint64(order.ID), 10)

	info := "Thanh toan don hang #" + ref
	if g.cfg.locale() == "en" {
		info = "Payment for order #" + ref
	}

	return map[string]string{
		"vnp_Version":    apiVersion,
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     MinorUnits(order.TotalAmount),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     ref,
		"vnp_OrderInfo":  info,
		"vnp_OrderType":  "other",
		"vnp_Locale":     g.cfg.locale(),
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     NormalizeIP(clientIP),
		"vnp_CreateDate": created.Format(timeLayout),
		"vnp_ExpireDate": expires.Format(timeLayout),
	}, expires
}

// CreatePaymentURL signs the request and appends the signature to the pay URL.
func (g *Gateway) CreatePaymentURL(order models.Order, clientIP string) (*PaymentURL, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	params, expires := g.Params(order, clientIP)
	signature := Sign(g.cfg.HashSecret, HashData(params))

	sep := "?"
	if strings.Contains(g.cfg.PayURL, "?") {
		sep = "&"
	}
	return &PaymentURL{
		URL:       g.cfg.PayURL + sep + queryString(params) + "&" + ParamSecureHash + "=" + signature,
		ExpiresAt: expires,
	}, nil
}

func (g *Gateway) VerifyCallback(params map[string]string) bool {
	return Verify(g.cfg.HashSecret, params)
}
