// pkg/testutil/fixture.go
// Package testutil builds in-memory property tables for tests
package testutil

import (
	"fmt"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Num builds a numeric column; nil entries are null
func Num(name string, values ...interface{}) *model.Column {
	col := model.NewNumericColumn(name, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
		case int:
			col.SetFloat(i, float64(x))
		case float64:
			col.SetFloat(i, x)
		default:
			panic(fmt.Sprintf("testutil.Num: unsupported %T", v))
		}
	}
	return col
}

// Cat builds a categorical column; nil entries are null
func Cat(name string, values ...interface{}) *model.Column {
	col := model.NewCategoricalColumn(name, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			col.SetString(i, s)
		}
	}
	return col
}

// Table assembles columns of equal length into a table
func Table(cols ...*model.Column) *model.Table {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	t := model.NewTable(rows)
	for _, c := range cols {
		if err := t.AddColumn(c); err != nil {
			panic(err)
		}
	}
	return t
}

// Zips used by PropertyTable, all in the city lookup set
var fixtureZips = []float64{12447, 24832, 24435}

// PropertyTable returns n rows shaped like the joined properties extract.
// Every tenth row is a commercial parcel, values grow linearly so no row is
// an upper outlier, and sparse columns fall below the default coverage.
func PropertyTable(n int) *model.Table {
	col := func(name string, f func(i int) interface{}) *model.Column {
		values := make([]interface{}, n)
		for i := range values {
			values[i] = f(i)
		}
		return Num(name, values...)
	}
	cat := func(name string, f func(i int) interface{}) *model.Column {
		values := make([]interface{}, n)
		for i := range values {
			values[i] = f(i)
		}
		return Cat(name, values...)
	}
	null := func(int) interface{} { return nil }
	when := func(cond func(int) bool, v func(int) interface{}) func(int) interface{} {
		return func(i int) interface{} {
			if cond(i) {
				return v(i)
			}
			return nil
		}
	}
	unless := func(cond func(int) bool, v func(int) interface{}) func(int) interface{} {
		return when(func(i int) bool { return !cond(i) }, v)
	}
	sqft := func(i int) interface{} { return 1200 + 10*i }
	bath := func(i int) interface{} { return 1 + i%4 }

	return Table(
		col("id", func(i int) interface{} { return i }),
		col("parcelid", func(i int) interface{} { return 10000 + i }),
		col("airconditioningtypeid", null),
		col("architecturalstyletypeid", null),
		col("basementsqft", when(func(i int) bool { return i%7 == 0 }, func(int) interface{} { return 500 })),
		col("bathroomcnt", bath),
		col("bedroomcnt", func(i int) interface{} { return 2 + i%3 }),
		col("buildingclasstypeid", null),
		col("buildingqualitytypeid", unless(func(i int) bool { return i%5 == 2 }, func(i int) interface{} { return 6 + i%3 })),
		col("calculatedbathnbr", bath),
		col("calculatedfinishedsquarefeet", sqft),
		col("finishedsquarefeet12", sqft),
		col("fips", func(int) interface{} { return 6037 }),
		col("fullbathcnt", bath),
		col("hashottuborspa", when(func(i int) bool { return i%9 == 0 }, func(int) interface{} { return 1 })),
		col("heatingorsystemtypeid", func(int) interface{} { return 2 }),
		col("latitude", func(i int) interface{} { return 34000000 + i }),
		col("longitude", func(i int) interface{} { return -118000000 - i }),
		col("lotsizesquarefeet", func(i int) interface{} { return 5000 + 20*i }),
		col("poolcnt", when(func(i int) bool { return i%4 == 0 }, func(int) interface{} { return 1 })),
		cat("propertyzoningdesc", func(int) interface{} { return "LAR1" }),
		col("propertylandusetypeid", func(i int) interface{} {
			if i%10 == 9 {
				return 31
			}
			return 261
		}),
		col("regionidcity", unless(func(i int) bool { return i%6 == 1 }, func(i int) interface{} { return 5000 + i%3 })),
		col("regionidcounty", func(int) interface{} { return 3101 }),
		col("regionidzip", func(i int) interface{} { return fixtureZips[i%3] }),
		col("storytypeid", null),
		col("typeconstructiontypeid", null),
		col("unitcnt", func(int) interface{} { return 1 }),
		col("yearbuilt", unless(func(i int) bool { return i%17 == 4 }, func(i int) interface{} { return 1950 + i%20 })),
		col("structuretaxvaluedollarcnt", func(i int) interface{} { return 100000 + 400*i }),
		col("taxvaluedollarcnt", func(i int) interface{} { return 300000 + 1000*i }),
		col("landtaxvaluedollarcnt", func(i int) interface{} { return 200000 + 600*i }),
		col("taxamount", func(i int) interface{} { return 4000 + 10*i }),
		cat("fireplaceflag", when(func(i int) bool { return i%8 == 0 }, func(int) interface{} { return "True" })),
		col("parcelid.1", func(i int) interface{} { return 10000 + i }),
		col("logerror", func(i int) interface{} { return float64(i%7)/100 - 0.03 }),
		cat("transactiondate", func(int) interface{} { return "2017-06-01" }),
		cat("heatingorsystemdesc", unless(func(i int) bool { return i%2 == 0 }, func(int) interface{} { return "Central" })),
	)
}
