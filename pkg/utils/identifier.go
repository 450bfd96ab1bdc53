package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Инвентарные номера приходят в произвольном виде ("1", "0001", "A-7",
// "가-12"), а сравниваем мы их строго по строке. Поэтому перед любым
// сохранением и поиском номер приводится к канонической форме:
// числовая часть дополняется нулями до фиксированной длины.
const identifierPadWidth = 4

// Префикс из букв (латиница, кириллица, хангыль и т.п.), необязательный
// дефис, затем цифры.
var prefixedNumberRe = regexp.MustCompile(`^(\p{L}+-?)(\d+)$`)

var digitsOnlyRe = regexp.MustCompile(`^\d+$`)

// FormatPaddedNumber приводит идентификатор к каноническому виду.
// Полностью числовой номер дополняется нулями до length, у номера с
// буквенным префиксом дополняется только числовой хвост. Всё остальное
// возвращается как есть (после trim). Пустая строка остается пустой.
func FormatPaddedNumber(value string, length int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}

	if digitsOnlyRe.MatchString(value) {
		return fmt.Sprintf("%0*s", length, value)
	}

	if m := prefixedNumberRe.FindStringSubmatch(value); m != nil {
		return m[1] + fmt.Sprintf("%0*s", length, m[2])
	}

	return value
}

// FormatAssetNumber — каноническая форма инвентарного номера оборудования.
func FormatAssetNumber(assetNumber string) string {
	return FormatPaddedNumber(assetNumber, identifierPadWidth)
}

// FormatSealNumber — каноническая форма номера пломбы.
func FormatSealNumber(sealNumber string) string {
	return FormatPaddedNumber(sealNumber, identifierPadWidth)
}

// CleanCellValue нормализует значение ячейки Excel: пустые строки,
// "-" и строковые представления NaN/None считаются отсутствующими.
func CleanCellValue(value string) string {
	value = strings.TrimSpace(value)
	switch value {
	case "", "-", "nan", "None", "NaN":
		return ""
	}
	return value
}

var importDateFormats = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
}

// ParseImportDate пробует известные текстовые форматы дат из выгрузок.
// Нераспознанная дата — это не ошибка строки, поэтому возвращаем нулевое
// время и решение оставляем вызывающему.
func ParseImportDate(value string) time.Time {
	cleaned := CleanCellValue(value)
	if cleaned == "" {
		return time.Time{}
	}

	for _, layout := range importDateFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t
		}
	}

	return time.Time{}
}
