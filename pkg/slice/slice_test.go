// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/storefront/pkg/slice"
)

func TestMapAndDuplicates(t *testing.T) {
	codes := []string{"mug-1", "mug-2", "mug-1", "mug-1", "cup-1"}

	assert.Equal(t, []string{"MUG-1", "MUG-2", "MUG-1", "MUG-1", "CUP-1"}, slice.Map(codes, strings.ToUpper))
	assert.Equal(t, []string{"mug-1"}, slice.Duplicates(codes, func(s string) string { return s }))
	assert.Nil(t, slice.Map[string, string](nil, strings.ToUpper))
	assert.Empty(t, slice.Duplicates([]string{"a", "b"}, func(s string) string { return s }))
}
