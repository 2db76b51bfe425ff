// Package regions загружает таблицу эталонных регионов для ремонта координат.
package regions

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/estate-geo-service/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "regions.schema.json"

var (
	//go:embed default_regions.json
	defaultRegionsJSON []byte

	//go:embed schema.json
	schemaJSON []byte
)

type regionsFile struct {
	Regions []regionJSON `json:"regions"`
}

type regionJSON struct {
	Name string     `json:"name"`
	Lat  [2]float64 `json:"lat"`
	Lng  [2]float64 `json:"lng"`
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add regions schema: %w", err)
	}
	return compiler.Compile(schemaURL)
}

// Load читает и валидирует таблицу регионов в формате JSON
func Load(r io.Reader) (domain.RegionSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.RegionSet{}, fmt.Errorf("read regions: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.RegionSet{}, fmt.Errorf("parse regions: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return domain.RegionSet{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return domain.RegionSet{}, fmt.Errorf("invalid regions: %w", err)
	}

	var file regionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.RegionSet{}, fmt.Errorf("decode regions: %w", err)
	}

	regions := make([]domain.ReferenceRegion, 0, len(file.Regions))
	for _, r := range file.Regions {
		regions = append(regions, domain.ReferenceRegion{
			Name: r.Name,
			Lat:  domain.Range{Min: r.Lat[0], Max: r.Lat[1]},
			Lng:  domain.Range{Min: r.Lng[0], Max: r.Lng[1]},
		})
	}

	return domain.NewRegionSet(regions)
}

// LoadFile загружает таблицу из файла; пустой путь - встроенная таблица
func LoadFile(path string) (domain.RegionSet, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.RegionSet{}, fmt.Errorf("open regions file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default возвращает встроенную таблицу из десяти крупнейших городов США
func Default() (domain.RegionSet, error) {
	return Load(bytes.NewReader(defaultRegionsJSON))
}
