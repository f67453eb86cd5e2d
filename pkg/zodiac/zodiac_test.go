package zodiac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSunSign(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"1995-03-21", "白羊座"},
		{"1995-04-19", "白羊座"},
		{"1995-04-20", "金牛座"},
		{"1995-06-15", "双子座"},
		{"1995-07-23", "狮子座"},
		{"1995-09-22", "处女座"},
		{"1995-11-22", "射手座"},
		{"1995-12-22", "摩羯座"},
		{"1996-01-19", "摩羯座"},
		{"1996-01-20", "水瓶座"},
		{"1996-02-19", "双鱼座"},
		{"1996-03-20", "双鱼座"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, SunSign(c.date), "date %s", c.date)
	}
}

func TestSunSignInvalidDate(t *testing.T) {
	assert.Empty(t, SunSign(""))
	assert.Empty(t, SunSign("15/06/1995"))
	assert.Empty(t, SunSign("not-a-date"))
}
