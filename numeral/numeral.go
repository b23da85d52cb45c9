// Package numeral turns a list item's ordinal and depth tier into the label
// displayed in front of it.
package numeral

import (
	"strconv"
	"strings"
)

// Format returns the label of the ordinal-th item of a list at the given
// tier: decimal for tier 1, lowercase letters for tier 2 and roman numerals
// from tier 3 on. Ordinals below 1 are not valid input.
func Format(ordinal, tier int) string {
	switch {
	case tier <= 1:
		return strconv.Itoa(ordinal)
	case tier == 2:
		return Alpha(ordinal)
	default:
		return Roman(ordinal)
	}
}

// Alpha encodes n in bijective base 26: a..z, then aa, ab, and so on.
func Alpha(n int) string {
	var letters []byte
	for n > 0 {
		rem := n % 26
		if rem == 0 {
			rem = 26
		}
		letters = append(letters, byte('a'+rem-1))
		n = (n - rem) / 26
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

// Roman encodes n as an uppercase roman numeral.
func Roman(n int) string {
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
