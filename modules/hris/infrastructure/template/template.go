// Package template reads export templates and writes merged tables as CSV.
package template

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/logging"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

type Loader struct {
	log *logrus.Entry
}

func NewLoader(log *logrus.Entry) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{log: log.WithField("component", "template")}
}

// Load reads a CSV or XLSX template. The first row is the header.
func (l *Loader) Load(path string) (*domain.Table, error) {
	var (
		t   *domain.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = readXLSX(path)
	default:
		var enc string
		t, enc, err = readCSVFile(path)
		if err == nil {
			l.log.WithFields(logrus.Fields{"path": path, "encoding": enc}).Debug("template decoded")
		}
	}
	if err != nil {
		return nil, &domain.TemplateShapeError{Path: path, Err: err}
	}
	l.log.WithFields(logrus.Fields{
		"path":    path,
		"columns": t.Columns(),
		"rows":    len(t.Rows),
	}).Info("template loaded")
	return t, nil
}

func readCSVFile(path string) (*domain.Table, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	data, enc, err := decode(raw)
	if err != nil {
		return nil, "", err
	}
	t, err := ReadCSV(bytes.NewReader(data))
	return t, enc, err
}

// decode normalizes template bytes to UTF-8. A BOM decides the encoding;
// without one, invalid UTF-8 is read as Windows-1252.
func decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8), bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		return out, "bom", err
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		return out, "windows-1252", err
	}
}

// ReadCSV parses a header and data rows. Ragged rows are allowed; the merge fits them.
func ReadCSV(r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	t := &domain.Table{}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t.Header = header
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
}

func readXLSX(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	t := &domain.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	t.Rows = rows[1:]
	return t, nil
}

// WriteCSV writes the header and rows. A table without a header writes rows only.
func WriteCSV(w io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(w)
	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
