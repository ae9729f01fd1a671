package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/warera-economy-go/pkg/utils"
)

func TestChunk(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, utils.Chunk(ids, 2))
	assert.Equal(t, [][]string{ids}, utils.Chunk(ids, 50))
	assert.Equal(t, [][]string{ids}, utils.Chunk(ids, 0))
	assert.Nil(t, utils.Chunk([]string{}, 3))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, utils.ClampInt(0, 1, 7))
	assert.Equal(t, 7, utils.ClampInt(9, 1, 7))
	assert.Equal(t, 3, utils.ClampInt(3, 1, 7))
}
