// pkg/acquire/query.go
package acquire

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/David-Botos/property-wrangle/pkg/config"
)

// lookupJoins are the type tables left-joined onto each property by their code
var lookupJoins = []struct {
	table string
	key   string
}{
	{"airconditioningtype", "airconditioningtypeid"},
	{"architecturalstyletype", "architecturalstyletypeid"},
	{"heatingorsystemtype", "heatingorsystemtypeid"},
	{"propertylandusetype", "propertylandusetypeid"},
	{"storytype", "storytypeid"},
	{"typeconstructiontype", "typeconstructiontypeid"},
	{"buildingclasstype", "buildingclasstypeid"},
}

// PropertiesQuery returns the extract query: every 2017 property with known
// coordinates, joined to the log error of its most recent transaction and to
// the type lookup tables. Repeated columns (parcelid, transactiondate) come
// back twice.
func PropertiesQuery(dialect, schema string) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM properties_2017\n")
	b.WriteString("\tJOIN (SELECT parcelid, MAX(transactiondate) AS transactiondate FROM predictions_2017\n")
	b.WriteString("\tGROUP BY parcelid) recent\n")
	b.WriteString("\tUSING (parcelid)\n")
	b.WriteString("\tJOIN (SELECT parcelid, logerror, transactiondate FROM predictions_2017) est\n")
	b.WriteString("\tON est.parcelid = recent.parcelid\n")
	b.WriteString("\tAND est.transactiondate = recent.transactiondate\n")
	for _, j := range lookupJoins {
		fmt.Fprintf(&b, "\tLEFT OUTER JOIN %s\n\tUSING (%s)\n", qualify(dialect, schema, j.table), j.key)
	}
	b.WriteString("\tWHERE latitude IS NOT NULL\n")
	b.WriteString("\tAND longitude IS NOT NULL")
	return b.String()
}

// qualify names a lookup table within schema using the dialect's identifier quoting
func qualify(dialect, schema, table string) string {
	switch dialect {
	case config.DriverMySQL:
		if schema == "" {
			return "`" + table + "`"
		}
		return "`" + schema + "`.`" + table + "`"
	case config.DriverPostgres:
		if schema == "" {
			return pq.QuoteIdentifier(table)
		}
		return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
	default:
		if schema == "" {
			return table
		}
		return schema + "." + table
	}
}
