// pkg/cleaner/constants.go
package cleaner

// Land-use type codes of single-unit residential properties
var SingleUnitLandUseTypes = []float64{260, 261, 262, 263, 264, 265, 268, 275, 276, 279}

// LandUseColumn holds the land-use type code
const LandUseColumn = "propertylandusetypeid"

// DroppedColumns are identifiers, type codes and columns redundant with others
var DroppedColumns = []string{
	"buildingclasstypeid",
	"typeconstructiontypeid",
	"storytypeid",
	"propertylandusetypeid",
	"heatingorsystemtypeid",
	"architecturalstyletypeid",
	"airconditioningtypeid",
	"id",
	"parcelid",
	"unitcnt",
	"propertyzoningdesc",
	"finishedsquarefeet12",
	"calculatedbathnbr",
	"fullbathcnt",
}

// DuplicateSuffix marks the second copy of a column name repeated by the source join
const DuplicateSuffix = ".1"

// Derived feature names
const (
	HasPool                = "has_pool"
	HasBasement            = "has_basement"
	TaxPerLotSqft          = "taxdollar_per_lotsqft"
	TaxPerStructureSqft    = "taxdollar_per_strcturesqft"
	MoreThanTwoBath        = "more_than_two_bath"
	HeatingColumn          = "heatingorsystemdesc"
	HotTubColumn           = "hashottuborspa"
	HeatingFill            = "None"
	OutlierSuffix          = "_outliers"
	RatioDecimalPlaces     = 2
	ThresholdDecimalPlaces = 0
)

// Cutoff removes rows whose outlier magnitude for Column is not strictly below Below
type Cutoff struct {
	Column string  `json:"column"`
	Below  float64 `json:"below"`
}

// RemovalCutoffs were fixed from the removal thresholds measured on the full
// 2017 extract. They are not recomputed per run.
var RemovalCutoffs = []Cutoff{
	{"bathroomcnt", 7},
	{"bedroomcnt", 4},
	{"calculatedfinishedsquarefeet", 9039},
	{"lotsizesquarefeet", 3478688},
	{"structuretaxvaluedollarcnt", 4358331},
	{"taxvaluedollarcnt", 23905851},
	{"landtaxvaluedollarcnt", 24025184},
	{"taxamount", 286115},
	{TaxPerLotSqft, 33},
	{TaxPerStructureSqft, 2},
}

// MedianColumns are filled with their training median
var MedianColumns = []string{
	"taxvaluedollarcnt",
	"landtaxvaluedollarcnt",
	"taxamount",
	"structuretaxvaluedollarcnt",
	"calculatedfinishedsquarefeet",
	"lotsizesquarefeet",
	"buildingqualitytypeid",
}

// Columns used by the mode and zip lookup fills
const (
	YearBuiltColumn = "yearbuilt"
	CityColumn      = "regionidcity"
	ZipColumn       = "regionidzip"
)

// ExcludedZip never gets a city from the lookup
const ExcludedZip = 96395

// CityLookupZips are the zip codes whose training rows lacked a city when the
// lookup was built
var CityLookupZips = []int64{
	12447, 24832, 24435, 18874, 13693, 22827,
	20008, 16764, 34543, 33252, 34780, 39308, 27491,
	32923, 54311, 47568, 14634, 10734, 32380, 46298,
	24384, 47019, 24812, 38032, 8384, 39306, 37688,
	39076, 42967, 118217, 18875, 118694, 45602, 52842,
	40081, 17597, 54970, 15554, 40009, 396556, 113576,
	54352, 17882, 17150, 118895, 14542, 118994, 16677,
	56780, 12773, 38980, 47762, 42091, 30187, 114834,
	14906, 47547, 25271, 50749, 17686, 12292, 53571,
	45457, 32927, 44833, 24174, 21778, 30908,
}
