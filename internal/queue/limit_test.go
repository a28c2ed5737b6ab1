package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		quota, due, new int
	}{
		{0, 0, 0},
		{-3, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{4, 3, 1},
		{5, 4, 1},
		{8, 6, 2},
		{20, 15, 5},
		{21, 16, 5},
	}
	for _, tt := range tests {
		due, newCount := Split(tt.quota)
		assert.Equal(t, tt.due, due, "due for quota %d", tt.quota)
		assert.Equal(t, tt.new, newCount, "new for quota %d", tt.quota)
	}
}

func TestRemainingQuota(t *testing.T) {
	assert.Equal(t, 3, RemainingQuota(5, 2))
	assert.Equal(t, 0, RemainingQuota(5, 9))
}

func TestSelectTop(t *testing.T) {
	due, newIDs := selectTop([]string{"d1", "d2"}, []string{"n1", "n2", "n3"}, 3, 1)
	assert.Equal(t, []string{"d1", "d2"}, due)
	assert.Equal(t, []string{"n1", "n2"}, newIDs)

	due, newIDs = selectTop(nil, nil, 3, 1)
	assert.Empty(t, due)
	assert.Empty(t, newIDs)
}
