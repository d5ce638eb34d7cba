// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with generic helpers
over element projections.
*/
package slice

// Map applies transform to every element of input.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Duplicates returns the keys that occur more than once, in first-repeat order.
func Duplicates[T any, K comparable](input []T, key func(T) K) []K {
	seen := make(map[K]int, len(input))
	var repeated []K
	for _, v := range input {
		k := key(v)
		seen[k]++
		if seen[k] == 2 {
			repeated = append(repeated, k)
		}
	}
	return repeated
}
