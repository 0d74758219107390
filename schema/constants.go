package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// TimeUnit represents the aggregation granularity accepted by energy endpoints.
	TimeUnit string
)

// All output modes supported.
const (
	JSONOut    OutputMode = "json" // default
	TableOut   OutputMode = "table"
	PandasOut  OutputMode = "pandas" // alias of table
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Time units understood by the monitoring API.
const (
	QuarterHourUnit TimeUnit = "QUARTER_OF_AN_HOUR"
	HourUnit        TimeUnit = "HOUR"
	DayUnit         TimeUnit = "DAY" // default
	WeekUnit        TimeUnit = "WEEK"
	MonthUnit       TimeUnit = "MONTH"
	YearUnit        TimeUnit = "YEAR"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	JSONOut:    {},
	TableOut:   {},
	PandasOut:  {},
	CSVOut:     {},
	TextOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidTimeUnits lists all valid time units.
var ValidTimeUnits = map[TimeUnit]struct{}{
	QuarterHourUnit: {},
	HourUnit:        {},
	DayUnit:         {},
	WeekUnit:        {},
	MonthUnit:       {},
	YearUnit:        {},
}
