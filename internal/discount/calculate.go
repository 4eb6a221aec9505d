package discount

import "github.com/shopspring/decimal"

// Amounts is the outcome of applying discounts to a price, in minor units.
type Amounts struct {
	VoucherDiscount int64
	CouponDiscount  int64
	AmountPaid      int64
}

// Calculate applies the voucher first, then caps coupons at what is left.
func Calculate(price, voucherDiscount, couponTotal int64) Amounts {
	if price < 0 {
		price = 0
	}
	voucher := clamp(voucherDiscount, 0, price)
	remaining := price - voucher
	coupon := clamp(couponTotal, 0, remaining)

	return Amounts{
		VoucherDiscount: voucher,
		CouponDiscount:  coupon,
		AmountPaid:      max(price-voucher-coupon, 0),
	}
}

// AdminFee is ceil((price - voucherDiscount) * percent / 100).
func AdminFee(price, voucherDiscount int64, percent float64) int64 {
	base := max(price-voucherDiscount, 0)
	if base == 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Ceil().
		IntPart()
}

func clamp(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}
