package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"15", 15, true},
		{"12,5", 12.5, true},
		{"12.5", 12.5, true},
		{"1.500", 1500, true},
		{"1.500,75", 1500.75, true},
		{"2.000.000", 2000000, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want DiscountResult
	}{
		{"percent", "%15 indirim", DiscountResult{Type: DiscountPercentage, Rate: 0.15}},
		{"percent up to", "%20'ye varan indirim", DiscountResult{Type: DiscountPercentage, Rate: 0.20}},
		{"fixed", "100 TL indirim", DiscountResult{Type: DiscountFixed, Rate: 100, MaxDiscount: ptr(100)}},
		{"percent with cap", "%10 indirim (maks 75 TL)", DiscountResult{Type: DiscountPercentage, Rate: 0.10, MaxDiscount: ptr(75)}},
		{"percent with en fazla cap", "%10 indirim, en fazla 150 TL", DiscountResult{Type: DiscountPercentage, Rate: 0.10, MaxDiscount: ptr(150)}},
		{"gift", "300 TL hediye", DiscountResult{Type: DiscountFixed, Rate: 300, MaxDiscount: ptr(300)}},
		{"grouped thousands", "2.000 TL indirim", DiscountResult{Type: DiscountFixed, Rate: 2000, MaxDiscount: ptr(2000)}},
		{"decimal comma percent", "%12,5 indirim", DiscountResult{Type: DiscountPercentage, Rate: 0.125}},
		{"percent beats currency", "500 TL üzeri %10 indirim", DiscountResult{Type: DiscountPercentage, Rate: 0.10}},
		{"installments", "Peşin fiyatına 6 taksit", DiscountResult{Type: DiscountPercentage, Installments: "6 taksit"}},
		{"installments up to", "3 aya varan taksit", DiscountResult{Type: DiscountPercentage, Installments: "3 taksit"}},
		{"nothing", "Kampanya detayları", DiscountResult{Type: DiscountPercentage}},
		{"empty", "", DiscountResult{Type: DiscountPercentage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Discount(tt.in)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.InDelta(t, tt.want.Rate, got.Rate, 1e-9)
			assert.Equal(t, tt.want.Installments, got.Installments)
			if tt.want.MaxDiscount == nil {
				assert.Nil(t, got.MaxDiscount)
			} else {
				require.NotNil(t, got.MaxDiscount)
				assert.InDelta(t, *tt.want.MaxDiscount, *got.MaxDiscount, 1e-9)
			}
		})
	}
}

func TestFixedDiscountRateEqualsCap(t *testing.T) {
	for _, in := range []string{"50 TL", "1.250 TL indirim", "75,5 TL kazanç"} {
		got := Discount(in)
		require.Equal(t, DiscountFixed, got.Type, in)
		require.NotNil(t, got.MaxDiscount, in)
		assert.Equal(t, got.Rate, *got.MaxDiscount, in)
	}
}

func TestDiscountText(t *testing.T) {
	assert.Equal(t, "%20 indirim", DiscountText("Migros'ta %20 indirim fırsatı"))
	assert.Equal(t, "100 TL'ye", DiscountText("Trendyol'da 100 TL'ye varan indirim"))
	assert.Equal(t, "250 TL hediye", DiscountText("Boyner'de 250 TL hediye"))
	assert.Equal(t, "9 taksit", DiscountText("Elektronikte 9 taksit fırsatı"))
	assert.Equal(t, "6 taksit", DiscountText("Peşin fiyatına 6 aya kadar taksit"))

	long := strings.Repeat("ğ", 150)
	assert.Equal(t, strings.Repeat("ğ", 100), DiscountText(long))
	assert.Equal(t, "Yeni sezon", DiscountText("Yeni sezon"))
}

func TestMerchant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Migros'ta 100 TL indirim", "Migros"},
		{"Trendyol’da %20 indirim", "Trendyol"},
		{"%20 indirim Boyner Online alışverişlerinizde", "Boyner Online"},
		{"%10 indirim İstanbul mağazaları için", "İstanbul"},
		{"%50 indirim fırsatı", "indirim"},
		{"%5 ", UnknownMerchant},
		{"", UnknownMerchant},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Merchant(tt.in))
		})
	}
}

func TestMerchantPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Trendyol.com", "trendyol"},
		{"Hepsiburada.com.tr", "hepsiburada"},
		{"  Boyner   Online ", "boyner online"},
		{"Migros'ta", "migros"},
		{"İKEA", "ikea"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MerchantPattern(tt.in))
		})
	}
}

func TestMinSpend(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"500 TL ve üzeri", 500},
		{"1000 TL üstü alışverişe", 1000},
		{"250 TL üzerinde harcama", 250},
		{"minimum 750 TL harcama", 750},
		{"En az 1.500 TL harcamaya", 1500},
		{"min. 300 TL", 300},
		{"%10 indirim", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, MinSpend(tt.in), 1e-9)
		})
	}
}

func TestDateRange(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		name      string
		in        string
		wantStart *string
		wantEnd   *string
	}{
		{"numeric pair", "15.02.2026 - 28.02.2026", str("2026-02-15"), str("2026-02-28")},
		{"month names with shared year", "1 Şubat - 31 Mart 2026", str("2026-02-01"), str("2026-03-31")},
		{"month names across years", "1 Aralık 2025 - 31 Ocak 2026", str("2025-12-01"), str("2026-01-31")},
		{"single month name", "Son tarih: 31 Mart 2026", nil, str("2026-03-31")},
		{"single numeric slash", "01/03/2026", nil, str("2026-03-01")},
		{"unpadded numeric", "Son gün 1.3.2026", nil, str("2026-03-01")},
		{"upper case month", "30 KASIM 2026", nil, str("2026-11-30")},
		{"ascii month alias", "1 subat 2026 - 5 agustos 2026", str("2026-02-01"), str("2026-08-05")},
		{"impossible start keeps its slot", "31.02.2026 - 15.03.2026", nil, str("2026-03-15")},
		{"impossible end keeps its slot", "15.02.2026 - 31.02.2026", str("2026-02-15"), nil},
		{"impossible month name end", "15 Şubat 2026 - 30 Şubat 2026", str("2026-02-15"), nil},
		{"only impossible numeric falls back to month names", "31.02.2026 veya 1 Mart - 5 Mart 2026", str("2026-03-01"), str("2026-03-05")},
		{"dotted and ascii capitals", "1 NİSAN - 30 NISAN 2026", str("2026-04-01"), str("2026-04-30")},
		{"capital dotless month", "1 MAYIS 2026 - 31 ARALIK 2026", str("2026-05-01"), str("2026-12-31")},
		{"no year anywhere", "5 mayıs - 10 haziran", nil, nil},
		{"no dates", "Kampanya devam ediyor", nil, nil},
		{"empty", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DateRange(tt.in)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
