package scoring

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// fixed renders v with the given number of decimals. decimal cannot hold
// NaN or Inf, those fall back to strconv.
func fixed(v float64, places int32) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', int(places), 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func rawNumber(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func rawString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func percent(v *float64, places int32) any {
	if v == nil {
		return nil
	}
	return fixed(*v, places) + "%"
}

func signedPercent(v *float64) any {
	if v == nil {
		return nil
	}
	s := fixed(*v, 1) + "%"
	if *v > 0 {
		return "+" + s
	}
	return s
}

func peVsSectorDisplay(pe, sectorPE *float64) any {
	if pe == nil || sectorPE == nil {
		return nil
	}
	return fixed(*pe, 1) + " vs " + fixed(*sectorPE, 1)
}

func rangePositionDisplay(price, high, low *float64) any {
	pos, ok := rangePosition(price, high, low)
	if !ok {
		return nil
	}
	return fixed(pos, 1) + "%"
}
