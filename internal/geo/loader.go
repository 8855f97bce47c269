package geo

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/model"
)

// LoadPolygons reads named zone polygons from src. src may be an http(s) URL
// or a local path to a GeoJSON file (.geojson/.json), a shapefile (.shp) or a
// zipped shapefile (.zip). Names come from the nameField attribute.
func LoadPolygons(ctx context.Context, httpClient *http.Client, src, nameField string) ([]ZonePolygon, error) {
	log := zap.L().With(zap.String("component", "geo.loader"))

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		tempDir, err := os.MkdirTemp("", "zone-polygons-*")
		if err != nil {
			return nil, eris.Wrap(err, "geo: create temp dir")
		}
		defer os.RemoveAll(tempDir) //nolint:errcheck

		dest := filepath.Join(tempDir, filepath.Base(strings.SplitN(src, "?", 2)[0]))
		log.Info("downloading zone polygons", zap.String("url", src))
		if err := downloadFile(ctx, httpClient, src, dest); err != nil {
			return nil, eris.Wrap(err, "geo: download polygons")
		}
		src = dest
	}

	var (
		polys   []ZonePolygon
		skipped int
		err     error
	)
	switch strings.ToLower(filepath.Ext(src)) {
	case ".geojson", ".json":
		polys, skipped, err = loadGeoJSON(src, nameField)
	case ".zip":
		polys, skipped, err = loadZippedShapefile(src, nameField)
	case ".shp":
		polys, skipped, err = loadShapefile(src, nameField)
	default:
		return nil, eris.Errorf("geo: unsupported polygon source %q", src)
	}
	if err != nil {
		return nil, err
	}

	log.Info("zone polygons loaded",
		zap.String("source", src),
		zap.Int("polygons", len(polys)),
		zap.Int("skipped", skipped),
	)
	return polys, nil
}

func loadGeoJSON(path, nameField string) ([]ZonePolygon, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "geo: read geojson")
	}
	var fc model.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, eris.Wrap(err, "geo: decode geojson")
	}
	polys, skipped := PolygonsFromFeatures(fc.Features, nameField)
	return polys, skipped, nil
}

func loadZippedShapefile(zipPath, nameField string) ([]ZonePolygon, int, error) {
	extractDir, err := os.MkdirTemp("", "zone-shp-*")
	if err != nil {
		return nil, 0, eris.Wrap(err, "geo: create extract dir")
	}
	defer os.RemoveAll(extractDir) //nolint:errcheck

	if err := extractZIP(zipPath, extractDir); err != nil {
		return nil, 0, eris.Wrap(err, "geo: extract shapefile ZIP")
	}
	shpPath, err := findFileByExt(extractDir, ".shp")
	if err != nil {
		return nil, 0, eris.Wrap(err, "geo: find .shp file")
	}
	return loadShapefile(shpPath, nameField)
}

func loadShapefile(path, nameField string) ([]ZonePolygon, int, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, 0, eris.Errorf("geo: shapefile field %s not found", nameField)
	}

	var (
		polys   []ZonePolygon
		skipped int
	)
	for reader.Next() {
		_, shape := reader.Shape()
		p, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g, err := geom.NewPolygon(geom.XY).SetCoords(shapeRings(p))
		if err != nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		zp, err := NewZonePolygon(name, g)
		if err != nil {
			skipped++
			continue
		}
		polys = append(polys, zp)
	}
	return polys, skipped, nil
}

// shapeRings splits a shapefile polygon into its parts. Outer and inner rings
// are kept side by side; containment tests each ring on its own.
func shapeRings(p *shp.Polygon) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		ring := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

// downloadFile downloads a URL to a local file.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "write file")
	}
	return nil
}

// extractZIP extracts a ZIP archive to the destination directory, flattening paths.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
