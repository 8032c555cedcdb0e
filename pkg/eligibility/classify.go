package eligibility

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
)

var (
	// ErrCategoryOverwrite signals a classification step that targeted an
	// already classified pixel. It indicates overlapping masks, not bad data.
	ErrCategoryOverwrite = errors.New("pixel already classified")

	// ErrInvalidThresholds is returned by Thresholds.Validate.
	ErrInvalidThresholds = errors.New("invalid eligibility thresholds")
)

// OverwriteError names the first pixel a classification step tried to
// overwrite.
type OverwriteError struct {
	Category Category
	Existing Category
	Row, Col int
}

func (e *OverwriteError) Error() string {
	return fmt.Sprintf("assigning %s to pixel (%d,%d) holding %s: %v",
		e.Category, e.Row, e.Col, e.Existing, ErrCategoryOverwrite)
}

func (e *OverwriteError) Unwrap() error {
	return ErrCategoryOverwrite
}

// Thresholds are the technical limits of the classification.
type Thresholds struct {
	MaxSlopePV         float64 // degrees
	MaxSlopeWind       float64 // degrees
	MaxBuildingShare   float64
	MaxUrbanGreenShare float64
	MaxDepthOffshore   float64 // metres, negative below sea level
}

// Validate checks the relations between thresholds.
func (t Thresholds) Validate() error {
	if t.MaxSlopePV > t.MaxSlopeWind {
		return fmt.Errorf("max slope pv %.1f exceeds max slope wind %.1f: %w",
			t.MaxSlopePV, t.MaxSlopeWind, ErrInvalidThresholds)
	}
	if t.MaxDepthOffshore > 0 {
		return fmt.Errorf("max depth offshore %.1f must not be positive: %w",
			t.MaxDepthOffshore, ErrInvalidThresholds)
	}
	return nil
}

// Inputs are the co-registered rasters the classification reads.
type Inputs struct {
	LandCover       *raster.Grid[LandCover]
	Slope           *raster.Grid[float64]
	Bathymetry      *raster.Grid[float64]
	ProtectedAreas  *raster.Grid[uint8]
	BuildingShare   *raster.Grid[float64]
	UrbanGreenShare *raster.Grid[float64]
}

func (in Inputs) check() error {
	switch {
	case in.LandCover == nil:
		return errors.New("missing land cover raster")
	case in.Slope == nil:
		return errors.New("missing slope raster")
	case in.Bathymetry == nil:
		return errors.New("missing bathymetry raster")
	case in.ProtectedAreas == nil:
		return errors.New("missing protected areas raster")
	case in.BuildingShare == nil:
		return errors.New("missing building share raster")
	case in.UrbanGreenShare == nil:
		return errors.New("missing urban green share raster")
	}
	return raster.CheckShapes(in.LandCover, in.Slope, in.Bathymetry,
		in.ProtectedAreas, in.BuildingShare, in.UrbanGreenShare)
}

// Classifier assigns exactly one Category to every pixel.
type Classifier struct {
	Thresholds Thresholds
	Logger     *zap.Logger
}

// NewClassifier returns a classifier after validating the thresholds.
func NewClassifier(t Thresholds, logger *zap.Logger) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{Thresholds: t, Logger: logger}, nil
}

type step struct {
	category Category
	mask     *raster.Mask
}

// Classify builds the categorical raster. Categories are assigned in a fixed
// order and each step may only touch pixels that are still NotEligible.
func (c *Classifier) Classify(in Inputs) (*raster.Grid[Category], error) {
	if err := in.check(); err != nil {
		return nil, fmt.Errorf("classifying eligibility: %w", err)
	}
	t := c.Thresholds

	settlements := raster.Greater(in.BuildingShare, t.MaxBuildingShare).
		Or(raster.Greater(in.UrbanGreenShare, t.MaxUrbanGreenShare))
	farm := raster.In(in.LandCover, Farm...)
	forest := raster.In(in.LandCover, Forest...)
	other := raster.In(in.LandCover, Other...)
	water := raster.In(in.LandCover, Water...)
	protected := raster.Equal(in.ProtectedAreas, ProtectedFlag)

	pv := raster.LessEqual(in.Slope, t.MaxSlopePV).
		AndNot(settlements).
		And(farm.Or(other))
	wind := raster.LessEqual(in.Slope, t.MaxSlopeWind).
		AndNot(settlements).
		And(raster.AnyOf(farm, forest, other))
	offshore := raster.Greater(in.Bathymetry, t.MaxDepthOffshore).
		And(water).
		AndNot(settlements)

	windAndPV := wind.And(pv)
	windOnly := wind.AndNot(pv)
	steps := []step{
		{RooftopPV, settlements},
		{OnshoreWindAndPVOther, windAndPV.And(other).AndNot(protected)},
		{OnshoreWindAndPVOtherProtected, windAndPV.And(other).And(protected)},
		{OnshoreWindOther, windOnly.And(other).AndNot(protected)},
		{OnshoreWindOtherProtected, windOnly.And(other).And(protected)},
		{OnshoreWindFarmland, windOnly.And(farm).AndNot(protected)},
		{OnshoreWindFarmlandProtected, windOnly.And(farm).And(protected)},
		{OnshoreWindForest, wind.And(forest).AndNot(protected)},
		{OnshoreWindForestProtected, wind.And(forest).And(protected)},
		{OnshoreWindAndPVFarmland, windAndPV.And(farm).AndNot(protected)},
		{OnshoreWindAndPVFarmlandProtected, windAndPV.And(farm).And(protected)},
		{OffshoreWind, offshore.AndNot(protected)},
		{OffshoreWindProtected, offshore.And(protected)},
	}

	out := raster.New[Category](in.LandCover.Rows, in.LandCover.Cols)
	for _, s := range steps {
		if err := assign(out, s); err != nil {
			return nil, err
		}
	}
	c.Logger.Debug("classified eligibility",
		zap.Int("rows", out.Rows),
		zap.Int("cols", out.Cols),
		zap.Int("not_eligible", raster.Equal(out, NotEligible).Count()),
	)
	return out, nil
}

func assign(out *raster.Grid[Category], s step) error {
	for i, set := range s.mask.Bits {
		if !set {
			continue
		}
		if existing := out.Values[i]; existing != NotEligible {
			return &OverwriteError{
				Category: s.category,
				Existing: existing,
				Row:      i / out.Cols,
				Col:      i % out.Cols,
			}
		}
		out.Values[i] = s.category
	}
	return nil
}

// Summary counts pixels per category. Every category appears, with zero
// counts included.
func Summary(categories *raster.Grid[Category]) (map[Category]int, error) {
	counts := make(map[Category]int, len(all))
	for _, c := range all {
		counts[c] = 0
	}
	for _, v := range categories.Values {
		if _, ok := counts[v]; !ok {
			return nil, fmt.Errorf("pixel value %d: %w", uint8(v), ErrUnknownCategory)
		}
		counts[v]++
	}
	return counts, nil
}
