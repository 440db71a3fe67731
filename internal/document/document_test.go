package document

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const invoiceBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>INVOICE</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Service</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Amount</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>House cleaning</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>$6,169.50</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t xml:space="preserve">Total </w:t></w:r><w:r><w:t>hours</w:t></w:r><w:r><w:tab/><w:t>237</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create(docxBodyPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

func TestReadDocx_ParagraphsThenTables(t *testing.T) {
	path := writeDocx(t, invoiceBody)

	got, err := ReadText(path)
	require.NoError(t, err)

	want := "INVOICE\n" +
		"Total hours\t237\n" +
		"\n" +
		"Service Amount \n" +
		"House cleaning $6,169.50 \n"
	assert.Equal(t, want, got)
}

func TestReadDocx_NestedParagraphs(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Before</w:t></w:r><w:r><w:txbxContent><w:p><w:r><w:t>Box</w:t></w:r></w:p></w:txbxContent></w:r><w:r><w:t>After</w:t></w:r></w:p>
<w:p><w:r><w:t>Next</w:t></w:r></w:p>
</w:body></w:document>`
	path := writeDocx(t, body)

	got, err := ReadDocx(path)
	require.NoError(t, err)
	assert.Equal(t, "BeforeBoxAfter\nNext\n", got)
}

func TestReadDocx_Errors(t *testing.T) {
	_, err := ReadDocx(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)

	notZip := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0600))
	_, err = ReadDocx(notZip)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = ReadDocx(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadText_PlainAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Total hours: 10"), 0600))

	got, err := ReadText(txt)
	require.NoError(t, err)
	assert.Equal(t, "Total hours: 10", got)

	_, err = ReadText(filepath.Join(dir, "invoice.pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadText(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TOTAL AMOUNT.xlsx")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))

	return path
}

func TestReadTable(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{nil, nil, nil},
		{"Month", "Hours", "", "Amount", "Received", "Notes", "Unnamed: 6"},
		{"March 2024", 142.25, "x", 3556.25, 0, "first month", "junk"},
		{nil, nil, nil, nil, nil, nil},
		{"April 2024", 192.58, nil, 4814.5, 1000},
	})

	rows, err := ReadTable(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{
		"Month":    "March 2024",
		"Hours":    "142.25",
		"Amount":   "3556.25",
		"Received": "0",
		"Notes":    "first month",
	}, rows[0])
	assert.Equal(t, "April 2024", rows[1]["Month"])
	assert.Equal(t, "", rows[1]["Notes"])
}

func TestReadTable_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Month"}})

	_, err := ReadTable(path, "Nope")
	require.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Total hours", 176},
		{},
		{"Total amount", "$4,400.00"},
	})

	got, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "Total hours 176\nTotal amount $4,400.00\n", got)
}

func TestTableFromRows_Empty(t *testing.T) {
	assert.Nil(t, tableFromRows(nil))
	assert.Nil(t, tableFromRows([][]string{{"", " "}}))
}
