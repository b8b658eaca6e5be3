package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEntityType(t *testing.T) {
	t.Run("Strips B- prefix", func(t *testing.T) {
		assert.Equal(t, "ORG", normalizeEntityType("B-ORG"))
	})

	t.Run("Strips I- prefix", func(t *testing.T) {
		assert.Equal(t, "ORG", normalizeEntityType("I-ORG"))
	})

	t.Run("Leaves plain labels alone", func(t *testing.T) {
		assert.Equal(t, "ORG", normalizeEntityType("ORG"))
		assert.Equal(t, "PER", normalizeEntityType("PER"))
	})
}
