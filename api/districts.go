package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// District is one row of the census CSV export.
type District struct {
	District          string  `json:"District"`
	GeographicalArea  float64 `json:"GeographicalArea"`
	PopulationDensity int     `json:"PopulationDensity"`
	Male              int     `json:"Male"`
	Female            int     `json:"Female"`
	Total             int     `json:"Total"`
	PercentageShare   float64 `json:"PercentageShare"`
	Rank              int     `json:"Rank"`
}

// StateTotal is the summary row excluded from rankings.
const StateTotal = "state total"

// IsStateTotal reports whether d is the summary row.
func (d District) IsStateTotal() bool {
	return strings.EqualFold(d.District, StateTotal)
}

// CSV headers as published; " Total" carries a leading space and
// "Geograpical" is misspelled in the source file.
const (
	colDistrict = "District"
	colArea     = "Geograpical Area (Sq.Kms)"
	colDensity  = "Population Density"
	colMale     = "Male"
	colFemale   = "Female"
	colTotal    = " Total"
	colShare    = "Percentage Share to Total Population"
	colRank     = "Rank"
)

var requiredColumns = []string{colDistrict, colArea, colDensity, colMale, colFemale, colTotal, colShare, colRank}

// ReadDistricts parses a census CSV. Rows that fail to parse are logged and
// skipped; a missing column is an error.
func ReadDistricts(r io.Reader, log *zap.Logger) ([]District, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("api: districts csv is empty")
		}
		return nil, fmt.Errorf("api: reading districts header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("api: districts csv has no %q column", c)
		}
	}

	var out []District
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Warn("skipping unreadable districts row", zap.Int("line", line), zap.Error(err))
			continue
		}
		d, err := parseDistrict(rec, idx)
		if err != nil {
			log.Warn("skipping districts row", zap.Int("line", line), zap.Strings("row", rec), zap.Error(err))
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func parseDistrict(rec []string, idx map[string]int) (District, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(rec) {
			return "", fmt.Errorf("missing %q", name)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	var (
		d    District
		errs []error
	)
	str := func(name string) string {
		s, err := field(name)
		if err != nil {
			errs = append(errs, err)
		}
		return s
	}
	integer := func(name string) int {
		n, err := strconv.Atoi(str(name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return n
	}
	float := func(name string) float64 {
		f, err := strconv.ParseFloat(str(name), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return f
	}

	d.District = str(colDistrict)
	d.GeographicalArea = float(colArea)
	d.PopulationDensity = integer(colDensity)
	d.Male = integer(colMale)
	d.Female = integer(colFemale)
	d.Total = integer(colTotal)
	d.PercentageShare = float(colShare)
	d.Rank = integer(colRank)
	return d, errors.Join(errs...)
}

// LoadDistricts reads the CSV at path.
func LoadDistricts(path string, log *zap.Logger) ([]District, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("api: opening districts csv: %w", err)
	}
	defer f.Close()
	return ReadDistricts(f, log)
}

// withoutStateTotal returns the districts excluding the summary row.
func withoutStateTotal(ds []District) []District {
	return slices.DeleteFunc(slices.Clone(ds), District.IsStateTotal)
}

// Stats aggregates the districts, excluding the summary row.
type Stats struct {
	Count           int       `json:"count"`
	TotalPopulation int       `json:"total_population"`
	TotalMale       int       `json:"total_male"`
	TotalFemale     int       `json:"total_female"`
	TotalArea       float64   `json:"total_area"`
	MeanDensity     float64   `json:"mean_density"`
	MedianDensity   float64   `json:"median_density"`
	MostDense       *District `json:"most_dense,omitempty"`
	LeastDense      *District `json:"least_dense,omitempty"`
}

// ComputeStats aggregates ds.
func ComputeStats(ds []District) Stats {
	ds = withoutStateTotal(ds)
	st := Stats{Count: len(ds)}
	if len(ds) == 0 {
		return st
	}
	densities := make([]int, 0, len(ds))
	most, least := ds[0], ds[0]
	for _, d := range ds {
		st.TotalPopulation += d.Total
		st.TotalMale += d.Male
		st.TotalFemale += d.Female
		st.TotalArea += d.GeographicalArea
		densities = append(densities, d.PopulationDensity)
		if d.PopulationDensity > most.PopulationDensity {
			most = d
		}
		if d.PopulationDensity < least.PopulationDensity {
			least = d
		}
	}
	sum := 0
	for _, v := range densities {
		sum += v
	}
	st.MeanDensity = float64(sum) / float64(len(densities))

	slices.Sort(densities)
	mid := len(densities) / 2
	if len(densities)%2 == 0 {
		st.MedianDensity = float64(densities[mid-1]+densities[mid]) / 2
	} else {
		st.MedianDensity = float64(densities[mid])
	}
	st.MostDense, st.LeastDense = &most, &least
	return st
}
