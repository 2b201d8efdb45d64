package export

import (
	"bytes"
	"testing"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook_Layout(t *testing.T) {
	reviews := []model.Review{
		{ID: "b", Nickname: "Bia", Rating: 5, Comment: "Perfeito", Timestamp: 1_700_000_000_000},
		{ID: "a", Nickname: "Ana", Rating: 0.5, Timestamp: 1_600_000_000_000},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, reviews))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Bia", rows[1][1])
	assert.Equal(t, "Perfeito", rows[1][3])
	assert.Equal(t, "2023-11-14 22:13:20", rows[1][5])
}

func TestWorkbook_ReadsBackWhatWasWritten(t *testing.T) {
	reviews := []model.Review{
		{ID: "r1", Nickname: "Ana", Rating: 4.5, Comment: "Voz incrível, ção", Timestamp: 1_700_000_000_123},
		{ID: "r2", Nickname: "Bia", Rating: 3, Timestamp: 1_700_000_000_000},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, reviews))

	got, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	assert.Equal(t, reviews, got)
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil))

	got, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadWorkbook_HandMadeSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ID", "Nickname", "Rating", "Comment"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"", " Caio ", "4,5"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"", "Duda", 2, "Bom"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	f.Close()

	got, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Review{Nickname: "Caio", Rating: 4.5}, got[0])
	assert.Equal(t, model.Review{Nickname: "Duda", Rating: 2, Comment: "Bom"}, got[1])
}

func TestReadWorkbook_InvalidRating(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ID", "Nickname", "Rating"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"", "Ana", "cinco"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	f.Close()

	_, err := ReadWorkbook(&buf)
	assert.ErrorContains(t, err, "row 2")
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewBufferString("not a zip"))
	assert.Error(t, err)
}
