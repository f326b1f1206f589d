package schema

import "strings"

// ColumnRule overrides the inferred hint of every column it matches.
type ColumnRule struct {
	Name  string
	Match func(column string) bool
	Hint  Hint
}

// EntityRule assigns a fixed primary key to tables whose name matches.
// A Key of one column is a single key; more columns make a composite key.
type EntityRule struct {
	Name  string
	Match func(table string) bool
	Key   []string
}

// Rules is the ordered, immutable rule set used by Resolve.
//
// Column rules run in order and a later match wins, so a column matching
// several rules ends with the hint of the last one. Entity rules stop at the
// first match. Tables that match no entity rule fall back to the first column
// when its name contains "id".
type Rules struct {
	Columns  []ColumnRule
	Entities []EntityRule
}

// VarcharLimit is the longest text kept as VARCHAR; longer columns become TEXT.
const VarcharLimit = 255

// DefaultRules returns the GTFS-aware rule set.
func DefaultRules() Rules {
	return Rules{
		Columns: []ColumnRule{
			{Name: "coordinates", Match: oneOf("stop_lat", "stop_lon", "shape_pt_lat", "shape_pt_lon"), Hint: DecimalOf(10, 8)},
			{Name: "gtfs-times", Match: oneOf("arrival_time", "departure_time"), Hint: Varchar(10)},
			{Name: "dates", Match: oneOf("start_date", "end_date", "date"), Hint: Date()},
			{Name: "contact", Match: IsContactColumn, Hint: Varchar(VarcharLimit)},
		},
		Entities: []EntityRule{
			{Name: "trips", Match: tableContains("trips"), Key: []string{"trip_id"}},
			{Name: "calendar_dates", Match: tableContains("calendar_dates"), Key: []string{"service_id", "date"}},
			{Name: "fare_rules", Match: tableContains("fare_rules"), Key: []string{"fare_id", "route_id"}},
			{Name: "shapes", Match: tableContains("shapes"), Key: []string{"shape_id", "shape_pt_sequence"}},
			{Name: "stop_times", Match: tableContains("stop_times"), Key: []string{"trip_id", "stop_sequence"}},
		},
	}
}

// IsContactColumn reports whether a column holds phone numbers, e-mail
// addresses or URLs. Such values are always text.
func IsContactColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "phone") || strings.Contains(n, "email") || strings.Contains(n, "url")
}

func oneOf(names ...string) func(string) bool {
	return func(col string) bool {
		for _, n := range names {
			if col == n {
				return true
			}
		}
		return false
	}
}

func tableContains(sub string) func(string) bool {
	return func(table string) bool {
		return strings.Contains(strings.ToLower(table), sub)
	}
}
