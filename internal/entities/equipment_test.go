package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEquipment_UsageMonths(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		days   int
		months int
		years  int
	}{
		{"меньше месяца", 29, 0, 0},
		{"ровно месяц", 30, 1, 0},
		{"четыреста дней", 400, 13, 1},
		{"два года", 730, 24, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Equipment{AcquisitionDate: now.AddDate(0, 0, -tc.days)}
			assert.Equal(t, tc.months, e.UsageMonths(now))
			assert.Equal(t, tc.years, e.UsageYears(now))
		})
	}
}

func TestEquipment_UsageMonthsZeroDate(t *testing.T) {
	var e Equipment
	assert.Equal(t, 0, e.UsageMonths(time.Now()))
	assert.Equal(t, 0, e.UsageYears(time.Now()))
}
