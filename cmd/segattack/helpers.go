package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIntList splits a comma-separated list of non-negative integers.
func parseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty list")
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", p)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative value: %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseSeparator accepts a literal single-rune separator or the word "tab".
func parseSeparator(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return runes[0], nil
}

// parseSample maps "all" to 0, meaning every target is attacked.
func parseSample(s string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("attack-sample must be all or a positive integer, got %q", s)
	}
	return n, nil
}
