package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func collect[T any](ch <-chan T, errCh <-chan error) ([]T, error) {
	var out []T
	for v := range ch {
		out = append(out, v)
	}
	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	return out, gotErr
}

func TestStreamArray(t *testing.T) {
	input := `[{"id":1,"name":"alpha"},{"id":2,"name":"beta"},{"id":3,"name":"gamma"}]`

	ch, errCh := StreamArray[testRecord](context.Background(), strings.NewReader(input))
	records, err := collect(ch, errCh)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "alpha", records[0].Name)
	assert.Equal(t, 3, records[2].ID)
}

func TestStreamArray_EmptyInput(t *testing.T) {
	ch, errCh := StreamArray[testRecord](context.Background(), strings.NewReader(""))
	records, err := collect(ch, errCh)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStreamArray_NotAnArray(t *testing.T) {
	ch, errCh := StreamArray[testRecord](context.Background(), strings.NewReader(`{"id":1}`))
	_, err := collect(ch, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestStreamArray_DecodeError(t *testing.T) {
	input := `[{"id":1,"name":"ok"},{"id":invalid}]`
	ch, errCh := StreamArray[testRecord](context.Background(), strings.NewReader(input))
	records, err := collect(ch, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json: decode element")
	assert.Len(t, records, 1)
}

func TestDecodeTable(t *testing.T) {
	input := `[["NAICS2017","NAICS2017_LABEL","ESTAB","EMP","PAYANN","county"],
		["00","Total for all sectors","31000","560000","40000000","183"],
		["23","Construction","3100",null,"2500000","183"]]`

	tbl, err := DecodeTable(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, tbl.Header, 6)
	require.Len(t, tbl.Rows, 2)

	emp := tbl.Column("EMP")
	assert.Equal(t, 3, emp)
	assert.Equal(t, "560000", tbl.Cell(tbl.Rows[0], emp))
	assert.Equal(t, "", tbl.Cell(tbl.Rows[1], emp))
	assert.Equal(t, -1, tbl.Column("MISSING"))
	assert.Equal(t, "", tbl.Cell(tbl.Rows[0], -1))
}

func TestDecodeTable_HeaderOnly(t *testing.T) {
	tbl, err := DecodeTable(context.Background(), strings.NewReader(`[["ESTAB","EMP"]]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"ESTAB", "EMP"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestDecodeTable_Malformed(t *testing.T) {
	_, err := DecodeTable(context.Background(), strings.NewReader(`{"error":"unknown variable"}`))
	require.Error(t, err)
}
