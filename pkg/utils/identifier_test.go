package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAssetNumber(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"только цифры", "1", "0001"},
		{"уже дополнено", "0001", "0001"},
		{"латинский префикс с дефисом", "A-7", "A-0007"},
		{"латинский префикс без дефиса", "PC12", "PC0012"},
		{"корейский префикс", "가-12", "가-0012"},
		{"длиннее ширины", "12345", "12345"},
		{"не номер", "serial/XYZ", "serial/XYZ"},
		{"пробелы по краям", "  7  ", "0007"},
		{"пустая строка", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAssetNumber(tc.input))
		})
	}
}

// Канонизация должна быть идемпотентной: повторный вызов ничего не меняет.
func TestFormatAssetNumber_Idempotent(t *testing.T) {
	for _, input := range []string{"1", "A-7", "가-12", "0001", "serial/XYZ"} {
		once := FormatAssetNumber(input)
		assert.Equal(t, once, FormatAssetNumber(once), "input=%q", input)
	}
}

func TestFormatSealNumber(t *testing.T) {
	assert.Equal(t, "0643", FormatSealNumber("643"))
	assert.Equal(t, "S-0005", FormatSealNumber("S-5"))
}

func TestCleanCellValue(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"-", ""},
		{"nan", ""},
		{"None", ""},
		{"NaN", ""},
		{" 값 ", "값"},
		{"10.4.12.53", "10.4.12.53"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CleanCellValue(tc.input), "input=%q", tc.input)
	}
}

func TestParseImportDate(t *testing.T) {
	expected := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-01-15", "2024.01.15", "2024/01/15", "15-01-2024", "15.01.2024"} {
		assert.Equal(t, expected, ParseImportDate(input), "input=%q", input)
	}

	assert.True(t, ParseImportDate("").IsZero())
	assert.True(t, ParseImportDate("-").IsZero())
	assert.True(t, ParseImportDate("не дата").IsZero())
	assert.True(t, ParseImportDate("2024-13-45").IsZero())
}
