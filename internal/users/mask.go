package users

import "strings"

// MaskCPF formats up to eleven digits as 000.000.000-00. Partial input is
// formatted as far as it goes; extra digits are dropped.
func MaskCPF(raw string) string {
	d := digits(raw, 11)
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// MaskPhone formats up to eleven digits as (00) 00000-0000.
func MaskPhone(raw string) string {
	d := digits(raw, 11)
	if len(d) <= 2 {
		return d
	}
	rest := d[2:]
	if len(rest) > 5 {
		rest = rest[:5] + "-" + rest[5:]
	}
	return "(" + d[:2] + ") " + rest
}

// Digits strips everything but ASCII digits.
func Digits(raw string) string {
	return digits(raw, 0)
}

func digits(raw string, limit int) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			if limit > 0 && b.Len() == limit {
				break
			}
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}
