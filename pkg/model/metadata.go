// pkg/model/metadata.go
package model

import "fmt"

// TableMetadata contains the structure information for an acquired table
type TableMetadata struct {
	Table   string       // Source table or file name
	Columns []ColumnMeta // Column definitions in result order
}

// ColumnMeta represents metadata about a source column
type ColumnMeta struct {
	Name     string // Column name after duplicate mangling
	DataType string // Database type name as reported by the driver (empty for CSV)
	Kind     Kind   // Resolved storage kind
}

// PropertySchema declares the kind of every known property column. Columns
// absent from the map have their kind inferred from their values.
var PropertySchema = map[string]Kind{
	"id":                           Numeric,
	"parcelid":                     Numeric,
	"airconditioningtypeid":        Numeric,
	"architecturalstyletypeid":     Numeric,
	"basementsqft":                 Numeric,
	"bathroomcnt":                  Numeric,
	"bedroomcnt":                   Numeric,
	"buildingclasstypeid":          Numeric,
	"buildingqualitytypeid":        Numeric,
	"calculatedbathnbr":            Numeric,
	"decktypeid":                   Numeric,
	"finishedfloor1squarefeet":     Numeric,
	"calculatedfinishedsquarefeet": Numeric,
	"finishedsquarefeet12":         Numeric,
	"finishedsquarefeet13":         Numeric,
	"finishedsquarefeet15":         Numeric,
	"finishedsquarefeet50":         Numeric,
	"finishedsquarefeet6":          Numeric,
	"fips":                         Numeric,
	"fireplacecnt":                 Numeric,
	"fullbathcnt":                  Numeric,
	"garagecarcnt":                 Numeric,
	"garagetotalsqft":              Numeric,
	"hashottuborspa":               Numeric,
	"heatingorsystemtypeid":        Numeric,
	"latitude":                     Numeric,
	"longitude":                    Numeric,
	"lotsizesquarefeet":            Numeric,
	"poolcnt":                      Numeric,
	"poolsizesum":                  Numeric,
	"pooltypeid10":                 Numeric,
	"pooltypeid2":                  Numeric,
	"pooltypeid7":                  Numeric,
	"propertylandusetypeid":        Numeric,
	"rawcensustractandblock":       Numeric,
	"regionidcity":                 Numeric,
	"regionidcounty":               Numeric,
	"regionidneighborhood":         Numeric,
	"regionidzip":                  Numeric,
	"roomcnt":                      Numeric,
	"storytypeid":                  Numeric,
	"threequarterbathnbr":          Numeric,
	"typeconstructiontypeid":       Numeric,
	"unitcnt":                      Numeric,
	"yardbuildingsqft17":           Numeric,
	"yardbuildingsqft26":           Numeric,
	"yearbuilt":                    Numeric,
	"numberofstories":              Numeric,
	"structuretaxvaluedollarcnt":   Numeric,
	"taxvaluedollarcnt":            Numeric,
	"assessmentyear":               Numeric,
	"landtaxvaluedollarcnt":        Numeric,
	"taxamount":                    Numeric,
	"taxdelinquencyyear":           Numeric,
	"censustractandblock":          Numeric,
	"logerror":                     Numeric,

	"propertycountylandusecode": Categorical,
	"propertyzoningdesc":        Categorical,
	"transactiondate":           Categorical,
	"airconditioningdesc":       Categorical,
	"architecturalstyledesc":    Categorical,
	"heatingorsystemdesc":       Categorical,
	"propertylandusedesc":       Categorical,
	"storydesc":                 Categorical,
	"typeconstructiondesc":      Categorical,
	"buildingclassdesc":         Categorical,
}

// RequiredColumns are the columns the wrangling stages read by name
var RequiredColumns = []string{
	"propertylandusetypeid",
	"buildingclasstypeid",
	"typeconstructiontypeid",
	"storytypeid",
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
	"poolcnt",
	"basementsqft",
	"bathroomcnt",
	"bedroomcnt",
	"calculatedfinishedsquarefeet",
	"lotsizesquarefeet",
	"structuretaxvaluedollarcnt",
	"taxvaluedollarcnt",
	"landtaxvaluedollarcnt",
	"taxamount",
	"heatingorsystemdesc",
	"hashottuborspa",
	"buildingqualitytypeid",
	"yearbuilt",
	"regionidcity",
	"regionidzip",
}

// KindOf returns the declared kind of a property column
func KindOf(name string) (Kind, bool) {
	k, ok := PropertySchema[name]
	return k, ok
}

// ValidateSchema checks that every required column is present and that
// declared columns carry their declared kind
func ValidateSchema(t *Table) error {
	for _, name := range RequiredColumns {
		if !t.Has(name) {
			return fmt.Errorf("schema validation: %w: %s", ErrColumnNotFound, name)
		}
	}
	for _, c := range t.Columns() {
		want, declared := PropertySchema[c.Name]
		if declared && c.Kind != want {
			return fmt.Errorf("schema validation: column %s is %s, expected %s", c.Name, c.Kind, want)
		}
	}
	return nil
}
