package report

import "fmt"

const yuanSign = "￥"

// FormatYuan renders cents as yuan with exactly two decimals.
func FormatYuan(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatCurrency is FormatYuan prefixed with the yuan sign.
func FormatCurrency(cents int64) string {
	return yuanSign + FormatYuan(cents)
}

var (
	chineseDigits = []string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	chineseUnits  = []string{"", "拾", "佰", "仟"}
	// enough groups for any int64 number of yuan
	chineseGroups = []string{"", "万", "亿", "万亿", "亿亿"}
)

// ChineseAmount renders cents in capital Chinese numerals (大写金额).
func ChineseAmount(cents int64) string {
	if cents <= 0 {
		return "零元整"
	}

	yuan := cents / 100
	jiao := (cents / 10) % 10
	fen := cents % 10

	result := ""
	if yuan > 0 {
		result = chineseInteger(yuan) + "元"
	}
	switch {
	case jiao == 0 && fen == 0:
		return result + "整"
	case jiao == 0:
		if yuan > 0 {
			result += "零"
		}
		return result + chineseDigits[fen] + "分"
	case fen == 0:
		return result + chineseDigits[jiao] + "角"
	default:
		return result + chineseDigits[jiao] + "角" + chineseDigits[fen] + "分"
	}
}

func chineseInteger(n int64) string {
	var groups []int64
	for n > 0 {
		groups = append(groups, n%10000)
		n /= 10000
	}

	result := ""
	needZero := false
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			needZero = result != ""
			continue
		}
		if needZero || (result != "" && g < 1000) {
			result += "零"
		}
		result += chineseGroup(g) + chineseGroups[i]
		needZero = false
	}
	return result
}

func chineseGroup(g int64) string {
	result := ""
	zero := false
	for pos := 3; pos >= 0; pos-- {
		div := int64(1)
		for k := 0; k < pos; k++ {
			div *= 10
		}
		d := (g / div) % 10
		if d == 0 {
			zero = result != ""
			continue
		}
		if zero {
			result += "零"
			zero = false
		}
		result += chineseDigits[d] + chineseUnits[pos]
	}
	return result
}
