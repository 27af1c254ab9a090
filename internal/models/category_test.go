package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.IsValid(), c)
	}

	assert.False(t, Category("").IsValid())
	assert.False(t, Category("娱乐费").IsValid())
	assert.Len(t, Categories, 11)
}
