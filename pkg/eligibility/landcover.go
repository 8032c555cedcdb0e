package eligibility

// LandCover is a GlobCover 2009 land cover class.
type LandCover uint8

const (
	PostFlooding              LandCover = 11
	RainfedCroplands          LandCover = 14
	MosaicCropland            LandCover = 20
	MosaicVegetation          LandCover = 30
	ClosedToOpenForest        LandCover = 40
	ClosedDeciduousForest     LandCover = 50
	OpenDeciduousForest       LandCover = 60
	ClosedEvergreenForest     LandCover = 70
	OpenNeedleleavedForest    LandCover = 90
	ClosedToOpenMixedForest   LandCover = 100
	MosaicForest              LandCover = 110
	MosaicGrassland           LandCover = 120
	Shrubland                 LandCover = 130
	Herbs                     LandCover = 140
	SparseVegetation          LandCover = 150
	RegularlyFloodedForest    LandCover = 160
	PermanentlyFloodedForest  LandCover = 170
	RegularlyFloodedGrassland LandCover = 180
	Urban                     LandCover = 190
	Bare                      LandCover = 200
	WaterBodies               LandCover = 210
	PermanentSnow             LandCover = 220
	LandCoverNoData           LandCover = 230
)

// Land cover groups used by the classification.
var (
	Farm       = []LandCover{PostFlooding, RainfedCroplands, MosaicCropland, MosaicVegetation}
	Forest     = []LandCover{ClosedToOpenForest, ClosedDeciduousForest, OpenDeciduousForest, ClosedEvergreenForest, OpenNeedleleavedForest, ClosedToOpenMixedForest, MosaicForest, RegularlyFloodedForest, PermanentlyFloodedForest}
	Vegetation = []LandCover{MosaicGrassland, Shrubland, Herbs, SparseVegetation, RegularlyFloodedGrassland}
	BareLand   = []LandCover{Bare}
	Other      = append(append([]LandCover{}, Vegetation...), BareLand...)
	Water      = []LandCover{WaterBodies}
)

// Protected area raster flags.
const (
	ProtectedFlag    = 255
	NotProtectedFlag = 0
)
