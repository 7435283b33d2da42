package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_ContainsPeriodic(t *testing.T) {
	assert.True(t, interval{0, 2}.containsPeriodic(math.Pi/2, math.Pi))
	assert.False(t, interval{0, 1}.containsPeriodic(math.Pi/2, math.Pi))
	assert.True(t, interval{-2, -1}.containsPeriodic(math.Pi/2, math.Pi), "-pi/2 is a pole too")
	assert.True(t, interval{4.7, 4.8}.containsPeriodic(-math.Pi/2, 2*math.Pi), "3pi/2 is a minimum of sin")
}

func TestInterval_Division(t *testing.T) {
	_, u := divInterval(point(1), interval{-1, 1})
	require.NotNil(t, u)
	assert.Equal(t, "/", u.op)

	out, u := divInterval(point(1), interval{2, 4})
	require.Nil(t, u)
	assert.Equal(t, interval{0.25, 0.5}, out)
}

func TestInterval_EvenPowerStraddlingZero(t *testing.T) {
	out, u := powConst(interval{-2, 3}, 2)
	require.Nil(t, u)
	assert.Equal(t, interval{0, 9}, out)

	out, u = powConst(interval{-2, 3}, 3)
	require.Nil(t, u)
	assert.Equal(t, interval{-8, 27}, out)
}

func TestInterval_PowerDomain(t *testing.T) {
	_, u := powConst(interval{-1, 1}, -1)
	assert.NotNil(t, u, "zero to a negative power")

	_, u = powConst(interval{-1, 1}, 0.5)
	assert.NotNil(t, u, "negative base with fractional exponent")

	_, u = powInterval(interval{-1, 1}, interval{1, 2})
	assert.NotNil(t, u)

	_, u = powInterval(interval{0, 1}, interval{-1, 1})
	assert.NotNil(t, u, "zero to a negative power")

	out, u := powInterval(interval{0, 1}, interval{0.5, 1})
	require.Nil(t, u, "a base touching zero is not negative")
	assert.Equal(t, interval{0, 1}, out)

	out, u = powInterval(interval{1, 2}, interval{1, 2})
	require.Nil(t, u)
	assert.Equal(t, interval{1, 4}, out)
}

func TestInterval_SinImage(t *testing.T) {
	out := sinImage(interval{0, math.Pi})
	assert.InDelta(t, 0, out.lo, 1e-12)
	assert.Equal(t, 1.0, out.hi)

	assert.Equal(t, interval{-1, 1}, sinImage(interval{0, 10}))
}
