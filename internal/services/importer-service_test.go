package services

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook собирает xlsx в памяти: первая строка - заголовки,
// дальше данные.
func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	_, err := book.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReadSheet(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{" 번호 ", "구분", "모델 명"},
		{"1", "데스크탑", "삼성 DB400T7B"},
	})

	data, err := readSheet(reader)
	require.NoError(t, err)

	assert.Equal(t, []string{"번호", "구분", "모델 명"}, data.columns)
	require.Len(t, data.rows, 1)
	assert.Empty(t, data.missingRequired())
}

func TestReadSheet_EmptyFile(t *testing.T) {
	_, err := readSheet(bytes.NewReader([]byte("это не xlsx")))
	require.Error(t, err)
}

func TestSheetData_MissingRequired(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"번호", "비고"},
	})

	data, err := readSheet(reader)
	require.NoError(t, err)
	assert.Equal(t, []string{"구분", "모델 명"}, data.missingRequired())
}

func TestSheetData_ParseRow(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"번호", "구분", "모델 명", "규격", "취득일자", "IP", "위치", "사용자", "부서", "보안씰1", "보안씰2", "보안씰3", "망분리", "win버전", "비고"},
		{"1", "데스크탑", "삼성 DB400T7B", "i5/8G", "2024-01-15", "10.4.12.53", "15층", "홍길동", "운영실", "643", "136", "-", "업무망", "윈도우 10", "메모"},
	})

	data, err := readSheet(reader)
	require.NoError(t, err)

	row, rowErr := data.parseRow(data.rows[0], 2)
	require.Empty(t, rowErr)

	assert.Equal(t, "0001", row.AssetNumber, "номер канонизируется")
	assert.Equal(t, "데스크탑", row.Category)
	assert.Equal(t, "삼성 DB400T7B", row.ModelName)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), row.AcquisitionDate)
	assert.Equal(t, "10.4.12.53", row.IPAddress)
	assert.Equal(t, "홍길동", row.UserName)
	assert.Equal(t, "운영실", row.Department)
	assert.Equal(t, "15층", row.Location)
	assert.Equal(t, []string{"0643", "0136"}, row.Seals, "пустая пломба отбрасывается, остальные канонизируются")
}

func TestSheetData_ParseRowErrors(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"번호", "구분", "모델 명"},
		{"", "데스크탑", "삼성"},
		{"2", "", "삼성"},
		{"3", "데스크탑", ""},
	})

	data, err := readSheet(reader)
	require.NoError(t, err)

	_, rowErr := data.parseRow(data.rows[0], 2)
	assert.Contains(t, rowErr, "строка 2")
	assert.Contains(t, rowErr, "инвентарный номер")

	_, rowErr = data.parseRow(data.rows[1], 3)
	assert.Contains(t, rowErr, "категория")

	_, rowErr = data.parseRow(data.rows[2], 4)
	assert.Contains(t, rowErr, "модель")
}

func TestImportRow_Notes(t *testing.T) {
	row := &importRow{}
	assert.Nil(t, row.notes())

	row = &importRow{Notes: "메모"}
	require.NotNil(t, row.notes())
	assert.Equal(t, "메모", *row.notes())

	row = &importRow{Spec: "i5/8G"}
	assert.Equal(t, "[규격: i5/8G]", *row.notes())

	row = &importRow{Spec: "i5/8G", Notes: "메모"}
	assert.Equal(t, "[규격: i5/8G] 메모", *row.notes())
}

func TestImportTemplate(t *testing.T) {
	svc := &importService{}

	book, err := svc.Template()
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"장비목록"}, book.GetSheetList())

	rows, err := book.GetRows("장비목록")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3, "заголовок и два примера")
	assert.Equal(t, templateColumns, rows[0])
}
