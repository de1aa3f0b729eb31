package template

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_CSVWithUTF8BOM(t *testing.T) {
	path := writeFile(t, "directory.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Action, Email\n,a@example.com\n,b@example.com,extra\n")...))

	tbl, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Email"}, tbl.Header)
	assert.Equal(t, [][]string{{"", "a@example.com"}, {"", "b@example.com", "extra"}}, tbl.Rows)
}

func TestLoad_CSVUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("employeeNumber,firstName\nNP1,Zoë\n"))
	require.NoError(t, err)
	path := writeFile(t, "roster.csv", data)

	tbl, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"employeeNumber", "firstName"}, tbl.Header)
	assert.Equal(t, [][]string{{"NP1", "Zoë"}}, tbl.Rows)
}

func TestLoad_CSVWindows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	path := writeFile(t, "att.csv", []byte("id,name\n1,Ren\xe9\n"))

	tbl, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "René", tbl.Rows[0][1])
}

func TestLoad_EmptyCSV(t *testing.T) {
	tbl, err := NewLoader(nil).Load(writeFile(t, "empty.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Columns())
	assert.Empty(t, tbl.Rows)
}

func TestLoad_Errors(t *testing.T) {
	var shapeErr *domain.TemplateShapeError

	_, err := NewLoader(nil).Load(writeFile(t, "bad.csv", []byte("a,b\n\"unterminated,x\n")))
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Path, "bad.csv")

	_, err = NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorAs(t, err, &shapeErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"id", "employeeNumber", "attendanceDate"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"1", "NP1", "2025-09-21"}))
	path := filepath.Join(t.TempDir(), "Attendance.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "employeeNumber", "attendanceDate"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "NP1", "2025-09-21"}}, tbl.Rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, &domain.Table{
		Header: []string{"Email", "Name"},
		Rows:   [][]string{{"a@example.com", "Doe, Jane"}, {"", ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Email,Name\na@example.com,\"Doe, Jane\"\n,\n", buf.String())

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Name"}, parsed.Header)
	assert.Len(t, parsed.Rows, 2)
}
