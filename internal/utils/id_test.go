package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDUsesPrefix(t *testing.T) {
	id := GenerateID("person")
	assert.True(t, strings.HasPrefix(id, "person-"))
	assert.Regexp(t, `^person-[0-9a-f]{8}$`, id)
}

func TestGenerateIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateID("task")
		_, dup := seen[id]
		assert.False(t, dup, "generated id %s twice", id)
		seen[id] = struct{}{}
	}
}
