package geo

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Attribute / property names recognised in GeoJSON and shapefile sources.
const (
	propSet            = "set"
	propLabel          = "label"
	propDistanceColumn = "distance_column"
	propLabelColumn    = "label_column"
)

// LoadReferenceSets reads reference sets from a file, choosing the decoder by
// extension: .yaml/.yml, .geojson/.json, .shp, or .zip holding a shapefile.
// Sets are returned in file order.
func LoadReferenceSets(path string) ([]ReferenceSet, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("path", path))

	var (
		sets []ReferenceSet
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		sets, err = loadYAML(path)
	case ".geojson", ".json":
		sets, err = loadGeoJSON(path)
	case ".shp":
		sets, err = loadShapefile(path)
	case ".zip":
		sets, err = loadZippedShapefile(path)
	default:
		return nil, eris.Errorf("geo: unsupported reference file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	for _, s := range sets {
		if len(s.Points) == 0 {
			return nil, eris.Wrapf(ErrEmptyReferenceSet, "set %q in %s", s.Name, path)
		}
	}

	log.Info("reference sets loaded", zap.Int("sets", len(sets)))
	return sets, nil
}

type yamlFile struct {
	Sets []yamlSet `yaml:"sets"`
}

type yamlSet struct {
	Name           string      `yaml:"name"`
	DistanceColumn string      `yaml:"distance_column"`
	LabelColumn    string      `yaml:"label_column"`
	Points         []yamlPoint `yaml:"points"`
}

type yamlPoint struct {
	Label string  `yaml:"label"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
}

func loadYAML(path string) ([]ReferenceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: read yaml reference file")
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "geo: parse yaml reference file")
	}
	if len(f.Sets) == 0 {
		return nil, eris.New("geo: yaml reference file defines no sets")
	}

	out := make([]ReferenceSet, 0, len(f.Sets))
	for _, ys := range f.Sets {
		b := newSetBuilder(ys.Name)
		b.set.DistanceColumn = ys.DistanceColumn
		b.set.LabelColumn = ys.LabelColumn
		for _, p := range ys.Points {
			b.add(GeoPoint{Lat: p.Lat, Lon: p.Lon}, p.Label)
		}
		out = append(out, b.build())
	}
	return out, nil
}

func loadGeoJSON(path string) ([]ReferenceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: read geojson reference file")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: parse geojson reference file")
	}

	builders := newSetIndex()
	for i, f := range fc.Features {
		name := stringProp(f.Properties, propSet)
		if name == "" {
			return nil, eris.Errorf("geo: feature %d has no %q property", i, propSet)
		}
		b := builders.get(name)
		if c := stringProp(f.Properties, propDistanceColumn); c != "" {
			b.set.DistanceColumn = c
		}
		if c := stringProp(f.Properties, propLabelColumn); c != "" {
			b.set.LabelColumn = c
		}

		pts, err := geometryPoints(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: feature %d", i)
		}
		label := stringProp(f.Properties, propLabel)
		for _, p := range pts {
			b.add(p, label)
		}
	}
	return builders.build(), nil
}

// geometryPoints flattens a GeoJSON geometry into its vertices. Line
// geometries contribute their waypoints only; no interpolation is done.
func geometryPoints(g geom.T) ([]GeoPoint, error) {
	var coords []geom.Coord
	switch t := g.(type) {
	case *geom.Point:
		coords = []geom.Coord{t.Coords()}
	case *geom.MultiPoint:
		coords = t.Coords()
	case *geom.LineString:
		coords = t.Coords()
	case nil:
		return nil, eris.New("missing geometry")
	default:
		return nil, eris.Errorf("unsupported geometry %T", g)
	}

	out := make([]GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		// GeoJSON order is lon, lat.
		out = append(out, GeoPoint{Lat: c[1], Lon: c[0]})
	}
	return out, nil
}

func stringProp(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func loadShapefile(shpPath string) ([]ReferenceSet, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	setIdx := fieldIndex(reader, propSet)
	labelIdx := fieldIndex(reader, propLabel)
	fallbackName := strings.TrimSuffix(filepath.Base(shpPath), filepath.Ext(shpPath))

	builders := newSetIndex()
	for reader.Next() {
		n, shape := reader.Shape()
		if shape == nil {
			continue
		}

		name := fallbackName
		if setIdx >= 0 {
			if v := strings.TrimSpace(reader.Attribute(setIdx)); v != "" {
				name = v
			}
		}
		label := ""
		if labelIdx >= 0 {
			label = strings.TrimSpace(reader.Attribute(labelIdx))
		}

		pts := shapePoints(shape)
		if len(pts) == 0 {
			zap.L().Debug("geo: skipping unsupported shape", zap.Int("record", n))
			continue
		}
		b := builders.get(name)
		for _, p := range pts {
			b.add(p, label)
		}
	}
	return builders.build(), nil
}

// shapePoints returns the vertices of a point, multipoint or polyline shape.
func shapePoints(s shp.Shape) []GeoPoint {
	var raw []shp.Point
	switch shape := s.(type) {
	case *shp.Point:
		raw = []shp.Point{*shape}
	case *shp.MultiPoint:
		raw = shape.Points
	case *shp.PolyLine:
		raw = shape.Points
	default:
		return nil
	}
	out := make([]GeoPoint, len(raw))
	for i, p := range raw {
		out[i] = GeoPoint{Lat: p.Y, Lon: p.X}
	}
	return out
}

func loadZippedShapefile(zipPath string) ([]ReferenceSet, error) {
	dir, err := os.MkdirTemp("", "refsets-*")
	if err != nil {
		return nil, eris.Wrap(err, "geo: create extract dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	if err := extractZIP(zipPath, dir); err != nil {
		return nil, eris.Wrap(err, "geo: extract reference ZIP")
	}
	shpPath, err := findFileByExt(dir, ".shp")
	if err != nil {
		return nil, eris.Wrap(err, "geo: find .shp file")
	}
	return loadShapefile(shpPath)
}

// extractZIP extracts a ZIP archive to the destination directory.
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

// setBuilder accumulates points for one set. Labels are kept only when at
// least one point carries one.
type setBuilder struct {
	set      ReferenceSet
	labels   []string
	anyLabel bool
}

func newSetBuilder(name string) *setBuilder {
	return &setBuilder{set: ReferenceSet{Name: name}}
}

func (b *setBuilder) add(p GeoPoint, label string) {
	b.set.Points = append(b.set.Points, p)
	b.labels = append(b.labels, label)
	if label != "" {
		b.anyLabel = true
	}
}

func (b *setBuilder) build() ReferenceSet {
	s := b.set
	if b.anyLabel {
		s.Labels = b.labels
	}
	return s
}

// setIndex keeps builders in first-seen order.
type setIndex struct {
	order []string
	byKey map[string]*setBuilder
}

func newSetIndex() *setIndex {
	return &setIndex{byKey: make(map[string]*setBuilder)}
}

func (x *setIndex) get(name string) *setBuilder {
	b, ok := x.byKey[name]
	if !ok {
		b = newSetBuilder(name)
		x.byKey[name] = b
		x.order = append(x.order, name)
	}
	return b
}

func (x *setIndex) build() []ReferenceSet {
	out := make([]ReferenceSet, 0, len(x.order))
	for _, name := range x.order {
		out = append(out, x.byKey[name].build())
	}
	return out
}
