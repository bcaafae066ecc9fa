package sbas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxgnss/rnxengine/internal/satsys"
)

func TestClassifySBAS(t *testing.T) {
	sys, sat, ok := Classify(120)
	assert.True(t, ok)
	assert.Equal(t, satsys.SBS, sys)
	assert.NotZero(t, sat)
}

func TestClassifyQZSL1S(t *testing.T) {
	sys, _, ok := Classify(185)
	assert.True(t, ok)
	assert.Equal(t, satsys.QZS, sys)
}

func TestClassifyUnrecognised(t *testing.T) {
	_, _, ok := Classify(50)
	assert.False(t, ok)
}
