// Package diff reports differences between registered models and the live schema.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Drift lists schema objects a model declares that the database lacks.
type Drift struct {
	MissingTables  []string
	MissingColumns map[string][]string
	MissingIndexes map[string][]string
}

// Empty reports whether the database matches every model.
func (d *Drift) Empty() bool {
	return len(d.MissingTables) == 0 && len(d.MissingColumns) == 0 && len(d.MissingIndexes) == 0
}

func (d *Drift) String() string {
	if d.Empty() {
		return "schema is up to date"
	}
	var b strings.Builder
	for _, t := range d.MissingTables {
		fmt.Fprintf(&b, "missing table %s\n", t)
	}
	for _, t := range sortedKeys(d.MissingColumns) {
		fmt.Fprintf(&b, "table %s: missing columns %s\n", t, strings.Join(d.MissingColumns[t], ", "))
	}
	for _, t := range sortedKeys(d.MissingIndexes) {
		fmt.Fprintf(&b, "table %s: missing indexes %s\n", t, strings.Join(d.MissingIndexes[t], ", "))
	}
	return b.String()
}

// Check parses each model with gorm's schema parser and compares it to db.
func Check(db *gorm.DB, models map[string]interface{}) (*Drift, error) {
	drift := &Drift{
		MissingColumns: make(map[string][]string),
		MissingIndexes: make(map[string][]string),
	}
	migrator := db.Migrator()

	for _, name := range sortedKeys(models) {
		model := models[name]
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %s: %w", name, err)
		}
		s := stmt.Schema

		if !migrator.HasTable(s.Table) {
			drift.MissingTables = append(drift.MissingTables, s.Table)
			continue
		}

		for _, field := range s.Fields {
			if field.DBName == "" || field.IgnoreMigration {
				continue
			}
			if !migrator.HasColumn(model, field.DBName) {
				drift.MissingColumns[s.Table] = append(drift.MissingColumns[s.Table], field.DBName)
			}
		}

		for _, idx := range declaredIndexes(s, db.NamingStrategy) {
			if !migrator.HasIndex(model, idx) {
				drift.MissingIndexes[s.Table] = append(drift.MissingIndexes[s.Table], idx)
			}
		}
	}

	sort.Strings(drift.MissingTables)
	return drift, nil
}

// declaredIndexes returns index names from index and uniqueIndex tags,
// using gorm's default naming for unnamed ones.
func declaredIndexes(s *schema.Schema, namer schema.Namer) []string {
	seen := make(map[string]bool)
	var names []string
	for _, field := range s.Fields {
		for _, key := range []string{"INDEX", "UNIQUEINDEX"} {
			value, ok := field.TagSettings[key]
			if !ok {
				continue
			}
			name := strings.TrimSpace(strings.Split(value, ",")[0])
			if name == "" || name == key {
				name = namer.IndexName(s.Table, field.DBName)
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
