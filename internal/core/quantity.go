// Package core provides the meal-plan domain types and their parsing helpers.
//
// This file contains functions for parsing ingredient quantities typed by
// people or produced by a chat model.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseQuantity converts a quantity string to a positive float.
//
// It accepts dot (1.5) and comma (1,5) decimal separators, simple fractions
// (1/2) and mixed numbers (1 1/2). Signs, units and other trailing text are
// rejected. The result is always positive.
//
// Examples:
//
//	ParseQuantity("2")     -> 2, nil
//	ParseQuantity("0,25")  -> 0.25, nil
//	ParseQuantity("3/4")   -> 0.75, nil
//	ParseQuantity("1 1/2") -> 1.5, nil
//	ParseQuantity("-1")    -> 0, ErrInvalidQuantity
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidQuantity
	}

	parts := strings.Fields(s)
	var total float64
	switch len(parts) {
	case 1:
		v, err := parseNumberOrFraction(parts[0])
		if err != nil {
			return 0, err
		}
		total = v
	case 2:
		// Mixed number: whole part then a proper fraction.
		if !strings.Contains(parts[1], "/") || strings.ContainsAny(parts[0], "/.,") {
			return 0, ErrInvalidQuantity
		}
		whole, err := parseNumberOrFraction(parts[0])
		if err != nil {
			return 0, err
		}
		frac, err := parseNumberOrFraction(parts[1])
		if err != nil {
			return 0, err
		}
		total = whole + frac
	default:
		return 0, ErrInvalidQuantity
	}

	if total <= 0 {
		return 0, ErrInvalidQuantity
	}
	return total, nil
}

func parseNumberOrFraction(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := parseDecimal(num)
		if err != nil {
			return 0, err
		}
		d, err := parseDecimal(den)
		if err != nil || d == 0 {
			return 0, ErrInvalidQuantity
		}
		return n / d, nil
	}
	return parseDecimal(s)
}

func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.Count(s, ".") > 1 {
		return 0, ErrInvalidQuantity
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return 0, ErrInvalidQuantity
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidQuantity
	}
	return v, nil
}
