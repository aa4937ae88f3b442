package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 42.5, ParseNumber("42.5"))
	assert.Equal(t, float64(-3), ParseNumber(" -3 "))
	assert.True(t, math.IsNaN(ParseNumber("")))
	assert.True(t, math.IsNaN(ParseNumber("abc")))
}

func TestParseNumberList(t *testing.T) {
	assert.Nil(t, ParseNumberList(""))
	assert.Nil(t, ParseNumberList("  "))

	got := ParseNumberList("100, x, 300")
	assert.Len(t, got, 3)
	assert.Equal(t, float64(100), got[0])
	assert.True(t, math.IsNaN(got[1]), "bad tokens keep their slot as NaN")
	assert.Equal(t, float64(300), got[2])
}

func TestParseStringAs(t *testing.T) {
	assert.Equal(t, 12, ParseStringAs("12", 0))
	assert.Equal(t, 7, ParseStringAs("nope", 7))
	assert.Equal(t, []string{"a", "b", "c"}, ParseStringAs("a, b ,c", []string(nil)))
	assert.Equal(t, `quoted`, ParseStringAs(`"quoted"`, ""))
}

func TestGetenv(t *testing.T) {
	t.Setenv("UTIL_TEST_LIST", "red,  yellow,green")
	assert.Equal(t, []string{"red", "yellow", "green"}, Getenv("UTIL_TEST_LIST", []string(nil)))

	t.Setenv("UTIL_TEST_INT", "250")
	assert.Equal(t, 250, Getenv("UTIL_TEST_INT", 5))

	assert.Equal(t, 5, Getenv("UTIL_TEST_MISSING", 5))
}

func TestRandomString(t *testing.T) {
	assert.Len(t, RandomString(8), 8)
	assert.Len(t, RandomString(40), 40)
	assert.NotEqual(t, RandomString(16), RandomString(16))
}
