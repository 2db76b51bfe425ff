package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFixtures loads SQL fixture files into the database
func LoadFixtures(db *sql.DB, fixturesPath string, files []string) error {
	for _, file := range files {
		path := filepath.Join(fixturesPath, file)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("load fixture %s: %w", file, err)
		}
		fmt.Printf("Loaded fixture: %s\n", file)
	}

	return nil
}

// GetPropertyIDByTitle returns the ID of a fixture property
func GetPropertyIDByTitle(db *sql.DB, title string) (int64, error) {
	var id int64
	err := db.QueryRowContext(context.Background(),
		"SELECT id FROM properties WHERE title = $1", title).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get property ID by title %q: %w", title, err)
	}
	return id, nil
}

// GetPropertyTypeIDByName returns the ID of a fixture property type
func GetPropertyTypeIDByName(db *sql.DB, name string) (int64, error) {
	var id int64
	err := db.QueryRowContext(context.Background(),
		"SELECT id FROM property_types WHERE name = $1", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get property type ID by name %q: %w", name, err)
	}
	return id, nil
}
