package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 100.0, Round2(100))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 10.0, Percent(100, 10))
	assert.Equal(t, 4.0, Percent(80, 5))
	assert.Equal(t, 0.0, Percent(100, 0))
	assert.Equal(t, 100.0, Percent(100, 100))
	// 33.333 rounds to the nearest unit of currency
	assert.Equal(t, 33.33, Percent(99.99, 33.333333))
}
