package datasets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/census/model"
)

// ErrUnknownDataset is returned by Get for unregistered names.
var ErrUnknownDataset = errors.New("datasets: unknown dataset")

// Dataset is a target table plus the extraction hints for its source page.
type Dataset struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Page is the 1-based page holding the table.
	Page int `yaml:"page" json:"page"`
	// HeaderTokens are first-cell values that mark grid header rows.
	HeaderTokens []string `yaml:"header_tokens,omitempty" json:"header_tokens,omitempty"`
	// SkipRows is the number of leading grid rows to drop; nil means 2.
	SkipRows *int `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`

	model.Schema `yaml:",inline"`
}

// Skip returns the number of leading grid rows to drop.
func (d Dataset) Skip() int {
	if d.SkipRows == nil {
		return 2
	}
	return *d.SkipRows
}

// Validate checks the dataset and its schema.
func (d Dataset) Validate() error {
	if d.Name == "" {
		return errors.New("datasets: dataset has no name")
	}
	if d.Page < 1 {
		return fmt.Errorf("datasets: %s: page must be at least 1, got %d", d.Name, d.Page)
	}
	if d.SkipRows != nil && *d.SkipRows < 0 {
		return fmt.Errorf("datasets: %s: negative skip_rows", d.Name)
	}
	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("datasets: %s: %w", d.Name, err)
	}
	return nil
}

// TopIndustries is the single-industry summary table.
func TopIndustries() Dataset {
	return Dataset{
		Name:         "top_industries",
		Description:  "Principal characteristics of the top industries by rank",
		Page:         1,
		HeaderTokens: []string{"Rank", "Characteristics"},
		Schema: model.Schema{
			Table:       "top_industries",
			LabelColumn: "rank",
			Columns: []model.Column{
				{Name: "total_no_of_factories", Title: "Total No. of Factories"},
				{Name: "no_of_factories_in_operation", Title: "No. of Factories in Operation"},
				{Name: "fixed_capital", Title: "Fixed Capital"},
				{Name: "invested_capital", Title: "Invested Capital"},
				{Name: "total_persons_engaged", Title: "Total Persons Engaged"},
				{Name: "output", Title: "Output"},
				{Name: "gross_value_added", Title: "Gross Value Added"},
			},
		},
	}
}

// AllIndiaStats is the characteristics-by-industry table.
func AllIndiaStats() Dataset {
	return Dataset{
		Name:         "all_india_stats",
		Description:  "All-India principal characteristics across the ten leading industries",
		Page:         1,
		HeaderTokens: []string{"Characteristics"},
		Schema: model.Schema{
			Table:       "all_india_stats",
			LabelColumn: "characteristic",
			Columns: []model.Column{
				{Name: "food_products", Title: "Food Products"},
				{Name: "basic_metals", Title: "Basic Metals"},
				{Name: "motor_vehicles", Title: "Motor Vehicles"},
				{Name: "chemicals", Title: "Chemicals"},
				{Name: "pharmaceuticals", Title: "Pharmaceuticals"},
				{Name: "textiles", Title: "Textiles"},
				{Name: "coke_and_refined_petroleum", Title: "Coke & Refined Petroleum"},
				{Name: "electrical_equipment", Title: "Electrical Equipment"},
				{Name: "machinery", Title: "Machinery & Equipment"},
				{Name: "other_non_metallic_minerals", Title: "Other Non-Metallic Mineral Products"},
			},
		},
	}
}

// Registry holds datasets by name.
type Registry struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{datasets: make(map[string]Dataset)}
}

// Register validates d and adds it, replacing any dataset with the same
// name.
func (r *Registry) Register(d Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.HeaderTokens = slices.Clone(d.HeaderTokens)
	d.Columns = slices.Clone(d.Columns)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[d.Name] = d
	return nil
}

// Get returns the named dataset.
func (r *Registry) Get(name string) (Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w %q", ErrUnknownDataset, name)
	}
	return d, nil
}

// List returns all datasets sorted by name.
func (r *Registry) List() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dataset, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// file is the YAML document layout.
type file struct {
	Datasets []Dataset `yaml:"datasets"`
}

// Load reads YAML dataset definitions from r and registers them.
func (r *Registry) Load(src io.Reader) error {
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("datasets: decoding definitions: %w", err)
	}
	for _, d := range f.Datasets {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads YAML dataset definitions from path.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("datasets: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}

// Marshal renders datasets as a YAML definitions document.
func Marshal(ds []Dataset) ([]byte, error) {
	return yaml.Marshal(file{Datasets: ds})
}

var defaultRegistry = NewRegistry()

func init() {
	for _, d := range []Dataset{TopIndustries(), AllIndiaStats()} {
		if err := defaultRegistry.Register(d); err != nil {
			panic(err)
		}
	}
}

// Register adds d to the default registry.
func Register(d Dataset) error { return defaultRegistry.Register(d) }

// Get returns a dataset from the default registry.
func Get(name string) (Dataset, error) { return defaultRegistry.Get(name) }

// List returns the default registry's datasets.
func List() []Dataset { return defaultRegistry.List() }

// LoadFile loads YAML definitions into the default registry.
func LoadFile(path string) error { return defaultRegistry.LoadFile(path) }
