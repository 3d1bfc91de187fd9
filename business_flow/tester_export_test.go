package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSheetRows(t *testing.T) {
	rows := [][]string{
		{"id", "status"},
		{"1", "pending"},
		{"2", "selected"},
	}

	t.Run("WritesEveryRow", func(t *testing.T) {
		xl := excelize.NewFile()
		defer func() { _ = xl.Close() }()

		require.NoError(t, writeSheetRows(xl, "Sheet1", rows))

		got, err := xl.GetRows("Sheet1")
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("ReportsFailedWrite", func(t *testing.T) {
		xl := excelize.NewFile()
		defer func() { _ = xl.Close() }()

		err := writeSheetRows(xl, "missing", rows)
		require.Error(t, err)
		var notExist excelize.ErrSheetNotExist
		assert.ErrorAs(t, err, &notExist)
	})
}
