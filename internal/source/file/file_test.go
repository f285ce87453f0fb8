package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"

	"typhoondash/internal/source"
	"typhoondash/internal/source/memory"
)

const sampleCSV = `연도,주요태풍,재산피해액(억원),복구액(억원),인명피해(명)
2011,무이파,410,600,3
2012,볼라벤/덴빈,"4,327","7,800",4
2017,-,0,0,0
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_CSV_CP949(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String(sampleCSV)
	require.NoError(t, err)
	path := writeFile(t, "damage.csv", []byte(encoded))

	l, err := New(path, Options{})
	require.NoError(t, err)
	recs, err := l.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, 2012, recs[1].Year)
	assert.Equal(t, "볼라벤/덴빈", recs[1].Typhoon)
	assert.Equal(t, 4327.0, recs[1].PropertyDamage)
	assert.Equal(t, 7800.0, recs[1].RecoveryAmount)
	assert.False(t, recs[2].HasTyphoon())
}

func TestLoad_CSV_UTF8WithBOM(t *testing.T) {
	path := writeFile(t, "damage.csv", []byte("\ufeff"+sampleCSV))

	l, err := New(path, Options{Encoding: EncodingUTF8})
	require.NoError(t, err)
	recs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestLoad_CSV_EnglishHeadersReordered(t *testing.T) {
	data := "casualties,year,recovery_amount,property_damage,typhoon\n1,2016,25,15,Chaba\n"
	path := writeFile(t, "damage.csv", []byte(data))

	l, err := New(path, Options{Encoding: EncodingUTF8})
	require.NoError(t, err)
	recs, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2016, recs[0].Year)
	assert.Equal(t, "Chaba", recs[0].Typhoon)
	assert.Equal(t, 15.0, recs[0].PropertyDamage)
	assert.Equal(t, 25.0, recs[0].RecoveryAmount)
	assert.Equal(t, 1, recs[0].Casualties)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"missing column", "year,typhoon,property_damage,recovery_amount\n2010,x,1,2\n", "casualties"},
		{"bad number", "year,typhoon,property_damage,recovery_amount,casualties\n2010,x,abc,2,0\n", "row 2"},
		{"negative", "year,typhoon,property_damage,recovery_amount,casualties\n2010,x,1,-2,0\n", "negative"},
		{"header only", "year,typhoon,property_damage,recovery_amount,casualties\n", "no data rows"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "damage.csv", []byte(tc.data))
			l, err := New(path, Options{Encoding: EncodingUTF8})
			require.NoError(t, err)

			recs, err := l.Load(context.Background())
			assert.Nil(t, recs)
			require.ErrorIs(t, err, source.ErrDataUnavailable)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "absent.csv"), Options{})
	require.NoError(t, err)

	_, err = l.Load(context.Background())
	assert.ErrorIs(t, err, source.ErrDataUnavailable)
}

func TestNew_Rejects(t *testing.T) {
	_, err := New("", Options{})
	assert.Error(t, err)

	_, err = New("data.json", Options{})
	assert.ErrorContains(t, err, "unsupported data file extension")

	_, err = New("data.csv", Options{Encoding: "latin1"})
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestLoad_XLSX(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()
	const sheet = "태풍피해"
	idx, err := wb.NewSheet(sheet)
	require.NoError(t, err)
	wb.SetActiveSheet(idx)

	header := []interface{}{}
	for _, h := range source.HeaderColumns {
		header = append(header, h)
	}
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &header))
	for i, r := range memory.Records() {
		row := []interface{}{r.Year, r.Typhoon, r.PropertyDamage, r.RecoveryAmount, r.Casualties}
		require.NoError(t, wb.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row))
	}
	path := filepath.Join(t.TempDir(), "damage.xlsx")
	require.NoError(t, wb.SaveAs(path))

	l, err := New(path, Options{Sheet: sheet})
	require.NoError(t, err)
	recs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, memory.Records(), recs)

	l, err = New(path, Options{Sheet: "없는시트"})
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	assert.ErrorIs(t, err, source.ErrDataUnavailable)
}

func TestReadCSV_TrimsLeadingSpace(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a, b\n1, 2\n"), EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}
