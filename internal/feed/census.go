package feed

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/city-insights/internal/fetcher"
	"github.com/sells-group/city-insights/internal/model"
)

// Census data API defaults.
const (
	DefaultCensusURL  = "https://api.census.gov/data"
	DefaultCensusYear = 2021
)

// BusinessPattern is one row of County or ZIP Code Business Patterns.
// Payroll is in thousands of dollars.
type BusinessPattern struct {
	NAICS          string
	Label          string
	Establishments model.Field[int]
	Employees      model.Field[int]
	Payroll        model.Field[int]
}

// Census fetches business-patterns tables. The API answers without a key at a
// lower request budget.
type Census struct {
	fetcher fetcher.Fetcher
	baseURL string
	year    int
	apiKey  string
}

// NewCensus creates a Census client. Empty values use the defaults.
func NewCensus(f fetcher.Fetcher, baseURL string, year int, apiKey string) *Census {
	if baseURL == "" {
		baseURL = DefaultCensusURL
	}
	if year <= 0 {
		year = DefaultCensusYear
	}
	return &Census{fetcher: f, baseURL: strings.TrimRight(baseURL, "/"), year: year, apiKey: apiKey}
}

// Configured reports whether an API key is set.
func (c *Census) Configured() bool { return c.apiKey != "" }

// CountyPatterns returns every NAICS row of the county's CBP table.
func (c *Census) CountyPatterns(ctx context.Context, stateFIPS, countyFIPS string) ([]BusinessPattern, error) {
	q := url.Values{}
	q.Set("get", "NAICS2017,NAICS2017_LABEL,ESTAB,EMP,PAYANN")
	q.Set("for", "county:"+countyFIPS)
	q.Set("in", "state:"+stateFIPS)

	tbl, err := c.table(ctx, "cbp", q)
	if err != nil {
		return nil, eris.Wrapf(err, "census: cbp county %s%s", stateFIPS, countyFIPS)
	}
	return patternsFromTable(tbl), nil
}

// ZipPatterns returns the all-sector ZBP row for zip. ok is false when the
// table has no data row.
func (c *Census) ZipPatterns(ctx context.Context, zip string) (BusinessPattern, bool, error) {
	q := url.Values{}
	q.Set("get", "ESTAB,EMP,PAYANN")
	q.Set("for", "zipcode:"+zip)

	tbl, err := c.table(ctx, "zbp", q)
	if err != nil {
		return BusinessPattern{}, false, eris.Wrapf(err, "census: zbp %s", zip)
	}
	rows := patternsFromTable(tbl)
	if len(rows) == 0 {
		return BusinessPattern{}, false, nil
	}
	return rows[0], true, nil
}

func (c *Census) table(ctx context.Context, dataset string, q url.Values) (fetcher.Table, error) {
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	body, err := c.fetcher.Download(ctx, c.baseURL+"/"+strconv.Itoa(c.year)+"/"+dataset, q)
	if err != nil {
		return fetcher.Table{}, err
	}
	defer body.Close() //nolint:errcheck
	return fetcher.DecodeTable(ctx, body)
}

func patternsFromTable(tbl fetcher.Table) []BusinessPattern {
	naics, label := tbl.Column("NAICS2017"), tbl.Column("NAICS2017_LABEL")
	estab, emp, pay := tbl.Column("ESTAB"), tbl.Column("EMP"), tbl.Column("PAYANN")

	out := make([]BusinessPattern, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, BusinessPattern{
			NAICS:          tbl.Cell(row, naics),
			Label:          tbl.Cell(row, label),
			Establishments: countField(tbl.Cell(row, estab)),
			Employees:      countField(tbl.Cell(row, emp)),
			Payroll:        countField(tbl.Cell(row, pay)),
		})
	}
	return out
}

// countField parses a Census count. Zero is a real value here; suppressed or
// garbled cells default to zero.
func countField(s string) model.Field[int] {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Missing(0)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return model.Defaulted(0)
	}
	return model.Present(n)
}
