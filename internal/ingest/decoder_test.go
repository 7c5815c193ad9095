package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeTableCSV(t *testing.T) {
	data := []byte("CPT Code,Insurance Company,Payment Amount,Balance\n99213,Acme Health,0,150.00\n99214,Beta Care,80,0\n")

	table, err := DecodeTable(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cpt_code", "insurance_company", "payment_amount", "balance"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "99213", table.Rows[0][0])
	assert.Equal(t, "Beta Care", table.Rows[1][1])
}

func TestDecodeTableSkipsLeadingTitleRows(t *testing.T) {
	data := []byte("Quarterly Denial Export\n\nGenerated 2024-03-01\ncpt,payer,payment,balance\n99213,Acme,0,100\n")

	table, err := DecodeTable(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cpt", "payer", "payment", "balance"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "99213", table.Rows[0][0])
}

func TestDecodeTableSkipsBlankDataRows(t *testing.T) {
	data := []byte("cpt,payer\n99213,Acme\n,\n99214,Beta\n")

	table, err := DecodeTable(data, nil)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestDecodeTableLatin1(t *testing.T) {
	// "José" in ISO 8859-1: the 0xE9 byte is invalid UTF-8
	data := []byte("cpt,physician,payment,balance\n99213,Jos\xe9 Garcia,0,50\n")

	table, err := DecodeTable(data, nil)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "José Garcia", table.Rows[0][1])
}

func TestDecodeTableExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"CPT Code", "Payer", "Payment", "Balance"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"99213", "Acme", 0, 150}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := DecodeTable(buf.Bytes(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cpt_code", "payer", "payment", "balance"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "99213", table.Rows[0][0])
}

func TestDecodeTableEmpty(t *testing.T) {
	_, err := DecodeTable(nil, nil)
	assert.Error(t, err)

	_, err = DecodeTable([]byte{}, nil)
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CPT Code", "cpt_code"},
		{"  Payment Amount  ", "payment_amount"},
		{"balance", "balance"},
		{"Insurance  Company", "insurance__company"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in))
	}
}

func TestFindHeaderRowFallsBackToFirstNonEmpty(t *testing.T) {
	rows := [][]string{
		{"", ""},
		{"alpha", "beta"},
		{"1", "2"},
	}
	assert.Equal(t, 1, findHeaderRow(rows))
}

func TestRawTableEmpty(t *testing.T) {
	var nilTable *RawTable
	assert.True(t, nilTable.Empty())
	assert.True(t, (&RawTable{Headers: []string{"cpt"}}).Empty())
	assert.False(t, (&RawTable{Rows: [][]string{{"x"}}}).Empty())
}
