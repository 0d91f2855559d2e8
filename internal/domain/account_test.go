package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestMarkVerifiedIsMonotonic(t *testing.T) {
	acc := &Account{}
	acc.MarkVerified()
	acc.MarkVerified()
	assert.True(t, acc.Verified)
}
