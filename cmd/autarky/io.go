package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

// Raster stack layer names.
const (
	layerLandCover       = "land-cover"
	layerSlope           = "slope"
	layerBathymetry      = "bathymetry"
	layerProtectedAreas  = "protected-areas"
	layerBuildingShare   = "building-share"
	layerUrbanGreenShare = "urban-green-share"
	layerEligibility     = "eligibility"
	layerCFRooftopPV     = "capacity-factor-rooftop-pv"
	layerCFOpenFieldPV   = "capacity-factor-open-field-pv"
	layerCFOnshoreWind   = "capacity-factor-onshore-wind"
	layerCFOffshoreWind  = "capacity-factor-offshore-wind"
	layerPVYield         = "yield-pv-twh"
	layerWindYield       = "yield-wind-twh"
)

func (a *app) readStack(ctx context.Context, uri string) (*raster.Stack, error) {
	data, err := a.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	s, err := raster.ReadStack(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	a.logger.Debug("read raster stack",
		zap.String("uri", uri),
		zap.Int("rows", s.Rows),
		zap.Int("cols", s.Cols),
		zap.Strings("layers", s.Names()),
	)
	return s, nil
}

func (a *app) readFeatures(ctx context.Context, uri string) ([]geo.Feature, error) {
	data, err := a.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	features, err := geo.ReadFeatures(bytes.NewReader(data), geo.DefaultFeatureKeys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	a.logger.Debug("read features", zap.String("uri", uri), zap.Int("count", len(features)))
	return features, nil
}

func (a *app) readTable(ctx context.Context, uri string) (*table.Table, error) {
	data, err := a.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	t, err := table.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return t, nil
}

// create opens path for writing; "-" is stdout.
func create(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (a *app) writeTable(path string, t *table.Table) error {
	w, err := create(path)
	if err != nil {
		return err
	}
	if err := table.WriteCSV(w, t); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	rows, cols := t.Dims()
	a.logger.Info("wrote table", zap.String("path", path), zap.Int("rows", rows), zap.Int("cols", cols))
	return w.Close()
}

func (a *app) writeStack(path string, s *raster.Stack) error {
	w, err := create(path)
	if err != nil {
		return err
	}
	if err := raster.WriteStack(w, s); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.logger.Info("wrote raster stack", zap.String("path", path), zap.Strings("layers", s.Names()))
	return w.Close()
}

func ids(features []geo.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.ID
	}
	return out
}

func parsePreference(s string) (bool, error) {
	switch s {
	case "pv":
		return true, nil
	case "wind":
		return false, nil
	}
	return false, fmt.Errorf("unknown preference %q, want pv or wind", s)
}
