package api

import (
	"cmp"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
)

// ============================================================================
// District Handlers
// ============================================================================

func (s *Server) districts(w http.ResponseWriter, r *http.Request) ([]District, bool) {
	ds, err := LoadDistricts(s.cfg.DistrictsCSV, s.log)
	if err != nil {
		s.serverError(w, r, "Error loading data", err)
		return nil, false
	}
	return ds, true
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.districts(w, r)
	if !ok {
		return
	}
	if ds == nil {
		ds = []District{}
	}
	s.writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleDistrict(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.districts(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	i := slices.IndexFunc(ds, func(d District) bool { return strings.EqualFold(d.District, name) })
	if i < 0 {
		s.writeError(w, http.StatusNotFound, "District not found")
		return
	}
	s.writeJSON(w, http.StatusOK, ds[i])
}

// ChartPoint is the reduced district shape used by the chart.
type ChartPoint struct {
	District              string  `json:"District"`
	GeographicalAreaSqKms float64 `json:"GeographicalAreaSqKms"`
	PopulationDensity     int     `json:"PopulationDensity"`
}

// chartOrders are the chart-data order_by values. Empty keeps file order.
var chartOrders = map[string]func(a, b District) int{
	"rank":       func(a, b District) int { return cmp.Compare(a.Rank, b.Rank) },
	"population": func(a, b District) int { return cmp.Compare(b.Total, a.Total) },
	"density":    func(a, b District) int { return cmp.Compare(b.PopulationDensity, a.PopulationDensity) },
	"area":       func(a, b District) int { return cmp.Compare(b.GeographicalArea, a.GeographicalArea) },
	"name":       func(a, b District) int { return cmp.Compare(strings.ToLower(a.District), strings.ToLower(b.District)) },
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 20)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	orderBy := r.URL.Query().Get("order_by")
	order, known := chartOrders[orderBy]
	if orderBy != "" && !known {
		s.writeError(w, http.StatusBadRequest, "Invalid 'order_by' parameter. Use: rank, population, density, area, or name")
		return
	}

	ds, ok := s.districts(w, r)
	if !ok {
		return
	}
	ds = withoutStateTotal(ds)
	if order != nil {
		slices.SortStableFunc(ds, order)
	}
	ds = ds[:min(limit, len(ds))]

	points := make([]ChartPoint, len(ds))
	for i, d := range ds {
		points[i] = ChartPoint{District: d.District, GeographicalAreaSqKms: d.GeographicalArea, PopulationDensity: d.PopulationDensity}
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleTopDistricts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 10)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	by := r.URL.Query().Get("by")
	if by == "" {
		by = "population"
	}
	if by != "population" && by != "density" && by != "area" {
		s.writeError(w, http.StatusBadRequest, "Invalid 'by' parameter. Use: population, density, or area")
		return
	}

	ds, ok := s.districts(w, r)
	if !ok {
		return
	}
	ds = withoutStateTotal(ds)
	slices.SortStableFunc(ds, chartOrders[by])
	s.writeJSON(w, http.StatusOK, ds[:min(limit, len(ds))])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.districts(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, ComputeStats(ds))
}

// ============================================================================
// Survey Table Handlers
// ============================================================================

// recordObject flattens a record into a JSON object keyed by column name.
// Null fields stay null.
func recordObject(schema model.Schema, rec model.Record) map[string]any {
	obj := make(map[string]any, len(rec.Fields)+1)
	obj[schema.LabelColumn] = rec.Label
	for i, c := range schema.Columns {
		if i < len(rec.Fields) {
			obj[c.Name] = rec.Fields[i]
		}
	}
	return obj
}

func (s *Server) handleTopIndustries(w http.ResponseWriter, r *http.Request) {
	if s.industries == nil {
		s.writeError(w, http.StatusInternalServerError, "top_industries table is not configured")
		return
	}
	limit, err := queryLimit(r, 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.industries.List(r.Context(), store.Query{Limit: limit})
	if err != nil {
		s.serverError(w, r, "Error reading top industries", err)
		return
	}
	schema := schemaOf(s.industries)
	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		out[i] = recordObject(schema, rec)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// schemaOf returns the reader's schema when it exposes one.
func schemaOf(r store.Reader) model.Schema {
	if st, ok := r.(interface{ Schema() model.Schema }); ok {
		return st.Schema()
	}
	return model.Schema{LabelColumn: "label"}
}

// StatPoint is one characteristic/industry cell of all_india_stats.
type StatPoint struct {
	Characteristic string      `json:"characteristic"`
	Industry       string      `json:"industry"`
	Value          model.Value `json:"value"`
}

func (s *Server) handleAllIndiaStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, http.StatusInternalServerError, "all_india_stats table is not configured")
		return
	}
	recs, err := s.stats.List(r.Context(), store.Query{})
	if err != nil {
		s.serverError(w, r, "Error reading all-India stats", err)
		return
	}
	cols := s.stats.Schema().Columns
	out := make([]StatPoint, 0, len(recs)*len(cols))
	for _, rec := range recs {
		for i, c := range cols {
			if i >= len(rec.Fields) {
				break
			}
			out = append(out, StatPoint{Characteristic: rec.Label, Industry: cmp.Or(c.Title, c.Name), Value: rec.Fields[i]})
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCharacteristics(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, http.StatusInternalServerError, "all_india_stats table is not configured")
		return
	}
	labels, err := s.stats.Labels(r.Context())
	if err != nil {
		s.serverError(w, r, "Error reading characteristics", err)
		return
	}
	if labels == nil {
		labels = []string{}
	}
	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleCharacteristic(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, http.StatusInternalServerError, "all_india_stats table is not configured")
		return
	}
	rec, err := s.stats.ByLabel(r.Context(), r.PathValue("characteristic"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Characteristic not found")
		return
	}
	if err != nil {
		s.serverError(w, r, "Error reading characteristic", err)
		return
	}
	s.writeJSON(w, http.StatusOK, recordObject(s.stats.Schema(), rec))
}
