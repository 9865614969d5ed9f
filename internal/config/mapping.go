package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CityCountryMap is the explicit city ordinal -> country ordinal table used to link imported cities to
// countries. Ordinals are the 1-based positions the importer assigns while reading the sheets.
type CityCountryMap map[int]int

type cityCountryFile struct {
	Cities map[int]int `yaml:"cities"`
}

// LoadCityCountryMap reads a YAML file of the form
//
//	cities:
//	  1: 1
//	  2: 1
//
// An empty path yields an empty map.
func LoadCityCountryMap(path string) (CityCountryMap, error) {
	if path == "" {
		return CityCountryMap{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city-country map: %w", err)
	}
	var f cityCountryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse city-country map %s: %w", path, err)
	}
	m := make(CityCountryMap, len(f.Cities))
	for city, country := range f.Cities {
		if city < 1 || country < 1 {
			return nil, fmt.Errorf("city-country map %s: ordinals start at 1, got %d: %d", path, city, country)
		}
		m[city] = country
	}
	return m, nil
}
