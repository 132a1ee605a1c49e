package marketdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/vicanso/go-charts/v2"
)

// CurveChartPNG renders the current yield curve as a PNG line chart.
// Rendered images share the payload cache TTL.
func (s *Service) CurveChartPNG(ctx context.Context) ([]byte, error) {
	if v, ok := s.cache.Get("chart|curve"); ok {
		return v.([]byte), nil
	}
	data, err := s.Rates(ctx)
	if err != nil {
		return nil, err
	}
	if len(data.YieldCurve) < 2 {
		return nil, errors.New("not enough curve points")
	}

	labels := make([]string, len(data.YieldCurve))
	values := make([]float64, len(data.YieldCurve))
	yMin, yMax := data.YieldCurve[0].Yield, data.YieldCurve[0].Yield
	for i, p := range data.YieldCurve {
		labels[i] = p.Maturity
		values[i] = p.Yield
		if p.Yield < yMin {
			yMin = p.Yield
		}
		if p.Yield > yMax {
			yMax = p.Yield
		}
	}
	yMin, yMax = padRange(yMin, yMax)

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc("US Treasury Yield Curve"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag()}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	img, err := painter.Bytes()
	if err != nil {
		return nil, err
	}
	s.cache.Set("chart|curve", img)
	return img, nil
}

// MacroChartPNG renders one indicator's history as a PNG line chart.
func (s *Service) MacroChartPNG(ctx context.Context, indicator string) ([]byte, error) {
	cacheKey := "chart|macro|" + indicator
	if v, ok := s.cache.Get(cacheKey); ok {
		return v.([]byte), nil
	}
	data, err := s.Macro(ctx)
	if err != nil {
		return nil, err
	}
	ind, ok := data[indicator]
	if !ok {
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
	if len(ind.History) < 2 {
		return nil, errors.New("not enough data points")
	}

	labels := make([]string, len(ind.History))
	values := make([]float64, len(ind.History))
	yMin, yMax := ind.History[0].Value, ind.History[0].Value
	for i, p := range ind.History {
		labels[i] = p.Date
		values[i] = p.Value
		if p.Value < yMin {
			yMin = p.Value
		}
		if p.Value > yMax {
			yMax = p.Value
		}
	}
	yMin, yMax = padRange(yMin, yMax)

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(indicator),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 8}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	img, err := painter.Bytes()
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, img)
	return img, nil
}

// padRange widens a y-range by 5% so the line does not hug the frame.
func padRange(yMin, yMax float64) (float64, float64) {
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	return yMin, yMax + pad
}
