package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundEUR(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},  // half rounds away from zero
		{"-1.005", "-1.01"},
		{"2.674999", "2.67"},
		{"2.675", "2.68"},
		{"1500", "1500"},
		{"0.001", "0"},
	}
	for _, c := range cases {
		in, err := decimal.NewFromString(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, RoundEUR(in).String(), "RoundEUR(%s)", c.in)
	}
}

func TestFormatEUR(t *testing.T) {
	v, err := decimal.NewFromString("1500")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", FormatEUR(v))

	v, err = decimal.NewFromString("-0.5")
	require.NoError(t, err)
	assert.Equal(t, "-0.50", FormatEUR(v))
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2023-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2023, day.Year())
	assert.Equal(t, time.June, day.Month())
	assert.Equal(t, 1, day.Day())

	_, err = ParseDate("01-06-2023")
	assert.Error(t, err)
	_, err = ParseDate("2023-13-01")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	t.Run("empty time means midnight", func(t *testing.T) {
		at, err := ParseDateTime("2023-06-01", "")
		require.NoError(t, err)
		assert.Equal(t, 0, at.Hour())
		assert.Equal(t, 0, at.Minute())
	})

	t.Run("HH:MM:SS", func(t *testing.T) {
		at, err := ParseDateTime("2023-06-01", "15:45:30")
		require.NoError(t, err)
		assert.Equal(t, 15, at.Hour())
		assert.Equal(t, 45, at.Minute())
		assert.Equal(t, 30, at.Second())
	})

	t.Run("HH:MM", func(t *testing.T) {
		at, err := ParseDateTime("2023-06-01", "09:30")
		require.NoError(t, err)
		assert.Equal(t, 9, at.Hour())
		assert.Equal(t, 30, at.Minute())
	})

	t.Run("malformed time is an error", func(t *testing.T) {
		_, err := ParseDateTime("2023-06-01", "25:99")
		assert.Error(t, err)
	})

	t.Run("ordering is total within a day", func(t *testing.T) {
		morning, err := ParseDateTime("2023-06-01", "09:30")
		require.NoError(t, err)
		afternoon, err := ParseDateTime("2023-06-01", "15:45:00")
		require.NoError(t, err)
		assert.True(t, morning.Before(afternoon))
	})
}

func TestGetCountryCodeString(t *testing.T) {
	require.NoError(t, InitCountryData("testdata/country.json"))

	assert.Equal(t, "840 - United States of America", GetCountryCodeString("US0378331005"))
	assert.Equal(t, "620 - Portugal", GetCountryCodeString("PTGAL0AM0009"))
	assert.Equal(t, "372 - Ireland", GetCountryCodeString("ie00b4l5y983")) // case-insensitive prefix
	assert.Equal(t, "Unknown Code: XX", GetCountryCodeString("XX1234567890"))
	assert.Equal(t, "Invalid ISIN (Too Short)", GetCountryCodeString("U"))
}
