package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Column is one column of a table as reported by the database.
type Column struct {
	Field string
	Type  string
	Null  string
	Key   string
	// Default is nil for a NULL default.
	Default *string
	Extra   string
}

// TableColumns returns the columns of table with lower-cased names and
// types. A missing table yields no columns on sqlite and an error on mysql.
func TableColumns(db *gorm.DB, table string) ([]Column, error) {
	if db == nil {
		return nil, fmt.Errorf("table %s: no database connection", table)
	}
	var columns []Column

	if db.Dialector.Name() == DriverSQLite {
		var rows []struct {
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		if err := db.Raw("SELECT name, type, \"notnull\", dflt_value, pk FROM pragma_table_info(?)", table).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, r := range rows {
			c := Column{Field: r.Name, Type: r.Type, Null: "YES", Default: r.DfltValue}
			if r.Notnull != 0 {
				c.Null = "NO"
			}
			if r.Pk != 0 {
				c.Key = "PRI"
			}
			columns = append(columns, c)
		}
	} else {
		if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table)).Scan(&columns).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
	}

	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// MissingColumns returns the names in want that table lacks.
func MissingColumns(db *gorm.DB, table string, want []string) ([]string, error) {
	columns, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Field] = true
	}
	var missing []string
	for _, name := range want {
		if !have[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
