package importer

import (
	"context"
	"fmt"
	"sort"

	"cybershield/internal/workbook"

	"github.com/sirupsen/logrus"
)

type city struct {
	id   uint
	name string
}

func (r *run) loadCountries(ctx context.Context, rows [][]string) (Report, error) {
	r.countries = make(map[int]uint)
	index := 1
	for _, row := range dataRows(rows) {
		name := workbook.Cell(row, 0)
		if name == "" {
			continue
		}
		id, err := r.store.UpsertCountry(ctx, name, optional(workbook.Cell(row, 2)))
		if err != nil {
			return Report{}, fmt.Errorf("country %q: %w", name, err)
		}
		r.countries[index] = id
		index++
	}
	r.log.WithField("countries", len(r.countries)).Debug("countries loaded")
	return Report{Countries: len(r.countries)}, nil
}

func (r *run) loadCities(ctx context.Context, rows [][]string) (Report, error) {
	r.cities = make(map[int]city)
	for _, row := range dataRows(rows) {
		name := workbook.Cell(row, 2)
		if name == "" {
			continue
		}
		index := workbook.Int(workbook.Cell(row, 0), len(r.cities)+1)
		countryID := r.cityCountry(index)
		if countryID == nil {
			r.log.WithFields(logrus.Fields{"city": name, "index": index}).Debug("city has no country")
		}
		id, err := r.store.UpsertCity(ctx, name, countryID)
		if err != nil {
			return Report{}, fmt.Errorf("city %q: %w", name, err)
		}
		r.cities[index] = city{id: id, name: name}
	}
	return Report{Cities: len(r.cities)}, nil
}

// cityCountry resolves the country of the city with the given ordinal.
func (r *run) cityCountry(cityIndex int) *uint {
	countryIndex := cityIndex
	if !r.opts.LegacyCityCountry {
		var ok bool
		if countryIndex, ok = r.opts.CityCountries[cityIndex]; !ok {
			return nil
		}
	}
	if id, ok := r.countries[countryIndex]; ok {
		return &id
	}
	return nil
}

// countryRef resolves an ordinal reference cell into a country id.
func (r *run) countryRef(value string) *uint {
	if value == "" {
		return nil
	}
	if id, ok := r.countries[workbook.Int(value, -1)]; ok {
		return &id
	}
	return nil
}

func (r *run) cityRef(value string) (city, bool) {
	if value == "" {
		return city{}, false
	}
	c, ok := r.cities[workbook.Int(value, -1)]
	return c, ok
}

// countCountries returns how many ordinals the countries sheet will produce.
func countCountries(rows [][]string) int {
	n := 0
	for _, row := range dataRows(rows) {
		if workbook.Cell(row, 0) != "" {
			n++
		}
	}
	return n
}

// validateMapping checks every mapped country ordinal against the countries sheet.
func validateMapping(mapping map[int]int, countries int) error {
	cities := make([]int, 0, len(mapping))
	for c := range mapping {
		cities = append(cities, c)
	}
	sort.Ints(cities)
	for _, c := range cities {
		if country := mapping[c]; country < 1 || country > countries {
			return fmt.Errorf("%w: city %d refers to country %d, the countries sheet has %d", ErrInvalidMapping, c, country, countries)
		}
	}
	return nil
}

// dataRows drops the header row.
func dataRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
