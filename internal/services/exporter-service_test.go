package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-system/internal/entities"
	"equipment-system/pkg/utils"
)

func TestExportRow(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	assignment := &entities.Assignment{
		AssignmentDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Equipment: &entities.Equipment{
			AssetNumber:     "0001",
			Category:        "데스크탑",
			ModelName:       "삼성 DB400T7B",
			AcquisitionDate: now.AddDate(0, 0, -400),
			IPAddress:       utils.StringPtr("10.4.12.53"),
			NetworkType:     utils.StringPtr("업무망"),
		},
		User: &entities.User{
			Name:       "홍길동",
			Department: "운영실",
			Location:   "15층",
		},
	}
	seals := []*entities.SecuritySeal{
		{SealNumber: "0643"},
		{SealNumber: "0136"},
	}

	row := exportRow(assignment, seals, now)
	require.Len(t, row, len(exportColumns))

	assert.Equal(t, "데스크탑", row[0])
	assert.Equal(t, "삼성 DB400T7B", row[1])
	assert.Equal(t, "0001", row[2])
	assert.Equal(t, "10.4.12.53", row[4])
	assert.Equal(t, "홍길동", row[5])
	assert.Equal(t, "0643, 0136", row[8])
	assert.Equal(t, "13개월", row[9], "400 дней - это 13 месяцев")
	assert.Equal(t, "1년", row[10])
	assert.Equal(t, "업무망", row[11])
	assert.Equal(t, "-", row[12], "пустая версия Windows выводится прочерком")
	assert.Equal(t, "2026-02-01", row[13])
}

func TestExportRow_NoSeals(t *testing.T) {
	assignment := &entities.Assignment{
		Equipment: &entities.Equipment{AcquisitionDate: time.Now()},
		User:      &entities.User{},
	}

	row := exportRow(assignment, nil, time.Now())
	assert.Equal(t, "-", row[8])
}

func TestParseSealNumbers(t *testing.T) {
	assert.Equal(t, []string{"0643", "0136"}, parseSealNumbers("643, 136"))
	assert.Equal(t, []string{"0643"}, parseSealNumbers("643, 0643"), "дубликаты после канонизации схлопываются")
	assert.Nil(t, parseSealNumbers(" , -, "))
	assert.Nil(t, parseSealNumbers(""))
}
