package charts

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// File names written by RenderAll.
const (
	PriceVsKMFile     = "price_vs_km.png"
	PriceByFuelFile   = "price_by_fuel_type.png"
	PriceTrendFile    = "price_trend_by_year.png"
	HPVsPriceFile     = "hp_vs_price.png"
	defaultImageWidth = 7 * vg.Inch
)

func requireColumns(df dataframe.DataFrame, names ...string) error {
	if df.Err != nil {
		return df.Err
	}
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	for _, n := range names {
		if !have[n] {
			return fmt.Errorf("charts: column %s not found", n)
		}
	}
	if df.Nrow() == 0 {
		return errors.New("charts: no rows to plot")
	}
	return nil
}

// groupXY splits (x, y) points by the label of each row. Labels come back sorted.
func groupXY(labels []string, x, y []float64) ([]string, map[string]plotter.XYs) {
	groups := make(map[string]plotter.XYs)
	for i, l := range labels {
		groups[l] = append(groups[l], plotter.XY{X: x[i], Y: y[i]})
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("charts: create dir: %w", err)
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}

func scatterByGroup(p *plot.Plot, labels []string, x, y []float64) error {
	keys, groups := groupXY(labels, x, y)
	for i, k := range keys {
		s, err := plotter.NewScatter(groups[k])
		if err != nil {
			return err
		}
		s.Color = plotutil.Color(i)
		p.Add(s)
		p.Legend.Add(k, s)
	}
	p.Legend.Top = true
	return nil
}

// PriceVsKM plots price against kilometers, one series per fuel type.
func PriceVsKM(df dataframe.DataFrame, path string) error {
	if err := requireColumns(df, "km", "price", "fuel_type"); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Price vs KM Driven"
	p.X.Label.Text = "Kilometers Driven"
	p.Y.Label.Text = "Price"

	if err := scatterByGroup(p, df.Col("fuel_type").Records(), df.Col("km").Float(), df.Col("price").Float()); err != nil {
		return err
	}
	return save(p, 8*vg.Inch, 5*vg.Inch, path)
}

// PriceByFuelType draws one box per fuel type.
func PriceByFuelType(df dataframe.DataFrame, path string) error {
	if err := requireColumns(df, "price", "fuel_type"); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Price Distribution by Fuel Type"
	p.Y.Label.Text = "Price"

	fuel := df.Col("fuel_type").Records()
	price := df.Col("price").Float()
	byFuel := make(map[string]plotter.Values)
	for i, f := range fuel {
		byFuel[f] = append(byFuel[f], price[i])
	}
	keys := make([]string, 0, len(byFuel))
	for k := range byFuel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(i), byFuel[k])
		if err != nil {
			return err
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
	}
	p.NominalX(keys...)
	return save(p, 6*vg.Inch, 4*vg.Inch, path)
}

// PriceTrendByYear plots the mean price of every manufacturing year.
func PriceTrendByYear(df dataframe.DataFrame, path string) error {
	if err := requireColumns(df, "mfg_year", "price"); err != nil {
		return err
	}
	agg := df.GroupBy("mfg_year").
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{"price"}).
		Arrange(dataframe.Sort("mfg_year"))
	if agg.Err != nil {
		return fmt.Errorf("charts: mean price by year: %w", agg.Err)
	}
	years := agg.Col("mfg_year").Float()
	means := agg.Col("price_MEAN").Float()
	pts := make(plotter.XYs, len(years))
	for i := range years {
		pts[i] = plotter.XY{X: years[i], Y: means[i]}
	}

	p := plot.New()
	p.Title.Text = "Average Price Trend by Manufacturing Year"
	p.X.Label.Text = "Manufacturing Year"
	p.Y.Label.Text = "Mean Price"

	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	l.Color = color.RGBA{B: 200, A: 255}
	s.Color = l.Color
	p.Add(l, s)
	return save(p, defaultImageWidth, 4*vg.Inch, path)
}

// HPVsPrice plots price against horsepower, split by transmission.
func HPVsPrice(df dataframe.DataFrame, path string) error {
	if err := requireColumns(df, "hp", "price", "automatic"); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Price vs Horsepower (Colored by Transmission)"
	p.X.Label.Text = "Horsepower"
	p.Y.Label.Text = "Price"

	auto := df.Col("automatic").Float()
	labels := make([]string, len(auto))
	for i, a := range auto {
		labels[i] = "manual"
		if a == 1 {
			labels[i] = "automatic"
		}
	}
	if err := scatterByGroup(p, labels, df.Col("hp").Float(), df.Col("price").Float()); err != nil {
		return err
	}
	return save(p, defaultImageWidth, 5*vg.Inch, path)
}

// RenderAll writes every chart into dir and returns the written paths.
// A chart whose columns are missing stops the run.
func RenderAll(df dataframe.DataFrame, dir string) ([]string, error) {
	charts := []struct {
		file   string
		render func(dataframe.DataFrame, string) error
	}{
		{PriceVsKMFile, PriceVsKM},
		{PriceByFuelFile, PriceByFuelType},
		{PriceTrendFile, PriceTrendByYear},
		{HPVsPriceFile, HPVsPrice},
	}
	var written []string
	for _, c := range charts {
		path := filepath.Join(dir, c.file)
		if err := c.render(df, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
