package domain

import "testing"

func TestEffectivePrice(t *testing.T) {
	discount := int64(40000)
	tooHigh := int64(60000)
	zero := int64(0)

	cases := []struct {
		name string
		pkg  Package
		want int64
	}{
		{"no discount", Package{Price: 50000}, 50000},
		{"valid discount", Package{Price: 50000, DiscountPrice: &discount}, 40000},
		{"discount above price ignored", Package{Price: 50000, DiscountPrice: &tooHigh}, 50000},
		{"zero discount ignored", Package{Price: 50000, DiscountPrice: &zero}, 50000},
	}
	for _, tc := range cases {
		if got := tc.pkg.EffectivePrice(); got != tc.want {
			t.Errorf("%s: EffectivePrice() = %d, want %d", tc.name, got, tc.want)
		}
	}
}
