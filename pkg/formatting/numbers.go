package formatting

import (
	"math"
	"strconv"
	"strings"
)

// Percent renders a [0,1] ratio as a whole percentage, rounding halves up.
func Percent(ratio float64) string {
	return strconv.Itoa(int(math.Floor(ratio*100+0.5))) + "%"
}

// GroupDigits inserts a space after every complete run of size digits that
// is followed by another digit. Non-digit characters end a run and are kept
// as they are.
//
//	GroupDigits("4111111111111111", 4) == "4111 1111 1111 1111"
//	GroupDigits("41111", 4)            == "4111 1"
func GroupDigits(s string, size int) string {
	if size <= 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/size)

	run := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		b.WriteByte(c)

		if !isDigit(c) {
			run = 0
			continue
		}

		run++
		if run == size && i+1 < len(s) && isDigit(s[i+1]) {
			b.WriteByte(' ')
			run = 0
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
