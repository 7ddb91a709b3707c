package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDocument = `
<html><body>
<table class="account_table">
  <tr><th>Date</th><th>Item</th><th>Type</th></tr>
  <tr><td>13 Jun, 2021</td><td>Half-Life 2</td><td>Purchase</td></tr>
  <tr><td> 1 Feb, 2020 </td><td> Portal </td><td>Purchase</td></tr>
  <tr><td>3 Mar, 2022</td><td>Too Few Cells</td></tr>
  <tr><td></td><td>No Date</td><td>Purchase</td></tr>
  <tr><td>4 Apr, 2022</td><td></td><td>Purchase</td></tr>
</table>
</body></html>`

func TestParseRows(t *testing.T) {
	rows, found, err := parseRows([]byte(sampleDocument))

	assert.NoError(t, err)
	assert.True(t, found)
	// Header, the short row and the empty-cell rows are all skipped.
	assert.Len(t, rows, 2)
	assert.Equal(t, "13 Jun, 2021", rows[0].RawDate)
	assert.Equal(t, "Half-Life 2", rows[0].RawItem)
	assert.Equal(t, "1 Feb, 2020", rows[1].RawDate)
	assert.Equal(t, "Portal", rows[1].RawItem)
}

func TestParseRows_NoLicensesTable(t *testing.T) {
	rows, found, err := parseRows([]byte(`<html><body><table><tr><td>x</td></tr></table></body></html>`))

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, rows)
}

func TestParseRows_TableClassAmongOthers(t *testing.T) {
	doc := `<table class="wide account_table striped">
		<tr><th>Date</th><th>Item</th><th>Type</th></tr>
		<tr><td>5 May, 2023</td><td>Doom</td><td>Purchase</td></tr>
	</table>`

	rows, found, err := parseRows([]byte(doc))

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Doom", rows[0].RawItem)
}

func TestParseRows_NestedMarkupInCells(t *testing.T) {
	doc := `<table class="account_table">
		<tr><th>Date</th><th>Item</th><th>Type</th></tr>
		<tr><td><span>7 Jul, 2021</span></td><td><a href="#">Half-Life <b>2</b></a></td><td>Gift</td></tr>
	</table>`

	rows, found, err := parseRows([]byte(doc))

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, rows, 1)
	assert.Equal(t, "7 Jul, 2021", rows[0].RawDate)
	assert.Equal(t, "Half-Life 2", rows[0].RawItem)
}
