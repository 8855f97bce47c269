package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/city-insights/internal/model"
)

func TestCountyPatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2021/cbp", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "county:183", q.Get("for"))
		assert.Equal(t, "state:37", q.Get("in"))
		assert.Empty(t, q.Get("key"))
		_, _ = w.Write([]byte(`[
			["NAICS2017","NAICS2017_LABEL","ESTAB","EMP","PAYANN","state","county"],
			["00","Total for all sectors","31000","560000","40000000","37","183"],
			["23","Construction","3100","0","x","37","183"],
			["541","Professional services","5000",null,"900000","37","183"]
		]`))
	}))
	defer srv.Close()

	c := NewCensus(newTestFetcher(), srv.URL, 0, "")
	rows, err := c.CountyPatterns(context.Background(), "37", "183")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "00", rows[0].NAICS)
	assert.Equal(t, model.Present(560000), rows[0].Employees)

	assert.Equal(t, "Construction", rows[1].Label)
	assert.Equal(t, model.Present(0), rows[1].Employees)
	assert.Equal(t, model.FieldDefault, rows[1].Payroll.State)

	assert.Equal(t, model.FieldMissing, rows[2].Employees.State)
}

func TestZipPatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2021/zbp", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("key"))
		switch r.URL.Query().Get("for") {
		case "zipcode:27601":
			_, _ = w.Write([]byte(`[["ESTAB","EMP","PAYANN","zip code tabulation area"],["1200","25000","1800000","27601"]]`))
		default:
			_, _ = w.Write([]byte(`[["ESTAB","EMP","PAYANN","zip code tabulation area"]]`))
		}
	}))
	defer srv.Close()

	c := NewCensus(newTestFetcher(), srv.URL+"/", 2021, "abc")
	assert.True(t, c.Configured())

	row, ok, err := c.ZipPatterns(context.Background(), "27601")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1200, row.Establishments.Value)
	assert.Equal(t, 1800000, row.Payroll.Value)

	_, ok, err = c.ZipPatterns(context.Background(), "27699")
	require.NoError(t, err)
	assert.False(t, ok)
}
