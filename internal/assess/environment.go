package assess

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"go-occurrence-assess/internal/geo"
	"go-occurrence-assess/internal/model"
)

// maxChartPointsPerSeries caps scatter payloads so report charts stay light
const maxChartPointsPerSeries = 500

// EnvironmentalBias projects each period's sampled records and the full
// background covariate grid into the background's principal-component
// space and reports per-period centroid offsets. Sampling that tracks
// the background environment stays near the origin; an offset centroid
// means records over-represent part of the covariate space.
func EnvironmentalBias(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	if spec.Environment == nil || spec.Environment.CovariateFile == "" {
		return model.SummaryTable{}, fmt.Errorf("environmental bias needs a covariate grid file")
	}

	bg, err := loadCovariates(spec.Environment.CovariateFile, spec.Environment.Delimiter)
	if err != nil {
		return model.SummaryTable{}, fmt.Errorf("loading covariates: %w", err)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(mat.NewDense(len(bg.points), bg.cols, bg.standardized), nil); !ok {
		return model.SummaryTable{}, fmt.Errorf("PCA on covariate grid failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	table := model.SummaryTable{
		Assessor:   model.AssessEnvBias,
		Exclusions: b.baseExclusions(),
	}
	if total := sumFloats(vars); total > 0 && len(vars) >= 2 {
		table.Notes = append(table.Notes,
			fmt.Sprintf("first two components explain %.1f%% of background covariate variance",
				100*(vars[0]+vars[1])/total))
	}

	// background cloud, thinned for the chart
	step := len(bg.points)/maxChartPointsPerSeries + 1
	for i := 0; i < len(bg.points); i += step {
		x, y := bg.project(&vecs, i)
		table.Points = append(table.Points, model.ScatterPoint{Series: "background", X: x, Y: y})
	}

	noCoords, noMatch := 0, 0
	for i, period := range b.Periods {
		var xs, ys []float64
		for _, rec := range b.ByPeriod[i] {
			if !rec.HasCoords {
				noCoords++
				continue
			}
			idx, ok := bg.nearest(recPoint(rec))
			if !ok {
				noMatch++
				continue
			}
			x, y := bg.project(&vecs, idx)
			xs = append(xs, x)
			ys = append(ys, y)
			if len(xs) <= maxChartPointsPerSeries {
				table.Points = append(table.Points, model.ScatterPoint{Series: period.Label(), X: x, Y: y})
			}
		}

		row := model.SummaryRow{
			Period:      period.Label(),
			RecordCount: len(xs),
			Metrics:     map[string]float64{"records_matched": float64(len(xs))},
		}
		if len(xs) > 0 {
			m1, m2 := stat.Mean(xs, nil), stat.Mean(ys, nil)
			row.Metrics["pc1_mean"] = m1
			row.Metrics["pc2_mean"] = m2
			// background is centered at the origin after standardization
			row.Metrics["centroid_dist"] = math.Hypot(m1, m2)
		} else {
			table.Notes = append(table.Notes,
				fmt.Sprintf("period %s has no records matching the covariate grid", period.Label()))
		}
		table.Rows = append(table.Rows, row)
	}

	if noCoords > 0 {
		table.Exclusions[ExclNoCoords] = noCoords
	}
	if noMatch > 0 {
		table.Exclusions[ExclNoMatch] = noMatch
	}
	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

// covariateGrid is the loaded environmental background: one row per grid
// point, standardized column-wise against the background itself
type covariateGrid struct {
	points       []geo.Point
	cols         int
	standardized []float64 // row-major, len(points) x cols
	matchDeg     float64   // match tolerance from grid spacing
}

func loadCovariates(path, delimiter string) (*covariateGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	if delimiter == "\t" {
		r.Comma = '\t'
	} else if delimiter == ";" {
		r.Comma = ';'
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading covariate header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("covariate grid needs lon, lat and at least one covariate column")
	}
	cols := len(header) - 2

	g := &covariateGrid{cols: cols}
	var raw []float64
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading covariate row: %w", err)
		}
		var vals [2]float64
		ok := true
		for i := 0; i < 2; i++ {
			if vals[i], err = parseFloat(row[i]); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		covs := make([]float64, cols)
		for i := 0; i < cols; i++ {
			if covs[i], err = parseFloat(row[i+2]); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		g.points = append(g.points, geo.Point{Lon: vals[0], Lat: vals[1]})
		raw = append(raw, covs...)
	}
	if len(g.points) < 3 {
		return nil, fmt.Errorf("covariate grid has %d usable points, need at least 3", len(g.points))
	}

	g.standardize(raw)
	g.matchDeg = g.spacing() * 2
	return g, nil
}

// standardize centers and scales each covariate column
func (g *covariateGrid) standardize(raw []float64) {
	n := len(g.points)
	g.standardized = make([]float64, len(raw))
	for c := 0; c < g.cols; c++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = raw[i*g.cols+c]
		}
		mean, std := stat.MeanStdDev(col, nil)
		for i := 0; i < n; i++ {
			if std > 0 {
				g.standardized[i*g.cols+c] = (col[i] - mean) / std
			}
		}
	}
}

// spacing estimates the grid's resolution from its bounding box density
func (g *covariateGrid) spacing() float64 {
	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for _, p := range g.points {
		minLon = math.Min(minLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLon = math.Max(maxLon, p.Lon)
		maxLat = math.Max(maxLat, p.Lat)
	}
	area := (maxLon - minLon) * (maxLat - minLat)
	if area <= 0 {
		return 1
	}
	return math.Sqrt(area / float64(len(g.points)))
}

// nearest finds the closest grid point within the match tolerance.
// Linear scan; covariate grids at workshop resolution are small.
func (g *covariateGrid) nearest(p geo.Point) (int, bool) {
	best, bestIdx := math.Inf(1), -1
	for i, gp := range g.points {
		d := math.Hypot(gp.Lon-p.Lon, gp.Lat-p.Lat)
		if d < best {
			best, bestIdx = d, i
		}
	}
	if bestIdx < 0 || best > g.matchDeg {
		return 0, false
	}
	return bestIdx, true
}

// project returns row i's coordinates on the first two components
func (g *covariateGrid) project(vecs *mat.Dense, i int) (float64, float64) {
	var x, y float64
	for c := 0; c < g.cols; c++ {
		v := g.standardized[i*g.cols+c]
		x += v * vecs.At(c, 0)
		if vecs.RawMatrix().Cols > 1 {
			y += v * vecs.At(c, 1)
		}
	}
	return x, y
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func sumFloats(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}
