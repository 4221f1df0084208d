package core

import (
	"fmt"
	"strconv"
)

// FormatMoney renders an amount with the rupee symbol and Indian digit
// grouping: the last three integer digits form one group, every two digits
// after that form another (12,34,567). Every surface that shows an amount
// (dashboard, transaction list, advisor prompt) goes through this function
// so the grouping stays identical across the app.
//
//	FormatMoney(Money{Paise: 123456700}) -> "₹12,34,567"
//	FormatMoney(Money{Paise: -15050})    -> "-₹150.50"
func FormatMoney(m Money) string {
	paise := m.Paise
	neg := paise < 0
	if neg {
		paise = -paise
	}
	rupees := paise / 100
	rem := paise % 100

	s := groupIndian(rupees)
	if rem != 0 {
		s += fmt.Sprintf(".%02d", rem)
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// groupIndian inserts Indian-convention separators into a non-negative
// integer: 3-digit low group, then 2-digit groups.
func groupIndian(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	out := digits[len(digits)-3:]
	for len(head) > 2 {
		out = head[len(head)-2:] + "," + out
		head = head[:len(head)-2]
	}
	return head + "," + out
}
