// Package feed queries the upstream data providers: ArcGIS feature services
// for permits and area plans, FRED for economic series and the Census
// business-patterns API.
package feed

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/fetcher"
	"github.com/sells-group/city-insights/internal/model"
)

// ArcGIS paging defaults.
const (
	DefaultPageSize   = 2000
	DefaultMaxRecords = 50000
)

// Query describes one ArcGIS FeatureServer query.
type Query struct {
	URL       string
	Where     string
	OutFields string // defaults to "*"
	OrderBy   string
	// Limit sets resultRecordCount on a single-page query. Zero leaves it to
	// the server.
	Limit int
}

func (q Query) values() url.Values {
	where, fields := q.Where, q.OutFields
	if where == "" {
		where = "1=1"
	}
	if fields == "" {
		fields = "*"
	}
	v := url.Values{}
	v.Set("f", "geojson")
	v.Set("where", where)
	v.Set("outFields", fields)
	v.Set("returnGeometry", "true")
	if q.OrderBy != "" {
		v.Set("orderByFields", q.OrderBy)
	}
	return v
}

// Page is one page of query results.
type Page struct {
	Features []model.Feature
	// More is the server's exceededTransferLimit flag.
	More bool
}

type geojsonPage struct {
	Features              []model.Feature `json:"features"`
	ExceededTransferLimit bool            `json:"exceededTransferLimit"`
	Properties            struct {
		ExceededTransferLimit bool `json:"exceededTransferLimit"`
	} `json:"properties"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ArcGIS runs feature-service queries through a Fetcher.
type ArcGIS struct {
	fetcher    fetcher.Fetcher
	pageSize   int
	maxRecords int
	log        *zap.Logger
}

// NewArcGIS creates an ArcGIS client. Non-positive sizes use the defaults.
func NewArcGIS(f fetcher.Fetcher, pageSize, maxRecords int) *ArcGIS {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &ArcGIS{
		fetcher:    f,
		pageSize:   pageSize,
		maxRecords: maxRecords,
		log:        zap.L().With(zap.String("component", "feed.arcgis")),
	}
}

// Page fetches the page of q starting at offset.
func (a *ArcGIS) Page(ctx context.Context, q Query, offset int) (Page, error) {
	v := q.values()
	v.Set("resultOffset", strconv.Itoa(offset))
	v.Set("resultRecordCount", strconv.Itoa(a.pageSize))
	return a.fetch(ctx, q.URL, v)
}

// QueryAll pages through q until an empty page or the record cap. On failure
// it returns the pages collected so far together with the error.
func (a *ArcGIS) QueryAll(ctx context.Context, q Query) (model.FeatureCollection, error) {
	var all []model.Feature
	for offset := 0; ; {
		page, err := a.Page(ctx, q, offset)
		if err != nil {
			return model.NewFeatureCollection(all), eris.Wrapf(err, "arcgis: page at offset %d", offset)
		}
		if len(page.Features) == 0 {
			break
		}
		all = append(all, page.Features...)
		offset += a.pageSize

		if offset >= a.maxRecords {
			a.log.Warn("record cap reached, stopping pagination",
				zap.String("url", q.URL),
				zap.Int("max_records", a.maxRecords),
			)
			break
		}
	}

	a.log.Debug("query complete", zap.String("url", q.URL), zap.Int("features", len(all)))
	return model.NewFeatureCollection(all), nil
}

// Query runs q as a single request.
func (a *ArcGIS) Query(ctx context.Context, q Query) (model.FeatureCollection, error) {
	v := q.values()
	if q.Limit > 0 {
		v.Set("resultRecordCount", strconv.Itoa(q.Limit))
	}
	page, err := a.fetch(ctx, q.URL, v)
	if err != nil {
		return model.NewFeatureCollection(nil), err
	}
	if page.More {
		a.log.Warn("single-page query truncated by server",
			zap.String("url", q.URL),
			zap.Int("features", len(page.Features)),
		)
	}
	return model.NewFeatureCollection(page.Features), nil
}

func (a *ArcGIS) fetch(ctx context.Context, rawURL string, v url.Values) (Page, error) {
	var resp geojsonPage
	if err := a.fetcher.GetJSON(ctx, rawURL, v, &resp); err != nil {
		return Page{}, eris.Wrap(err, "arcgis: query")
	}
	// ArcGIS reports query errors with a 200 status.
	if resp.Error != nil {
		return Page{}, eris.Errorf("arcgis: query error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return Page{
		Features: resp.Features,
		More:     resp.ExceededTransferLimit || resp.Properties.ExceededTransferLimit,
	}, nil
}
