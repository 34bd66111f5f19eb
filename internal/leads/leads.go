// Package leads reads batches of leads for bulk import.
//
// A YAML file carries optional defaults and a list of leads:
//
//	defaults:
//	  list_id: "30000"
//	  source: crm
//	leads:
//	  - phone_number: "5551234567"
//	    phone_code: "1"
//
// A CSV file carries a header row naming the parameters, one lead per row.
// Empty cells are omitted so defaults from flags can fill them.
package leads

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ifp/vicidial-cli/internal/api"
	"github.com/ifp/vicidial-cli/internal/validation"
)

// Format identifies a lead file encoding.
type Format string

const (
	// FormatYAML is a mapping with optional defaults and a leads list.
	FormatYAML Format = "yaml"
	// FormatCSV is a header row of parameter names followed by one lead per row.
	FormatCSV Format = "csv"
)

// MaxLeads caps a single batch file.
const MaxLeads = 100000

// ErrNoLeads is returned for a file that parses but holds no leads.
var ErrNoLeads = errors.New("no leads found")

// Lead is one record of a batch. Line is the 1-based source line used in
// error reports.
type Lead struct {
	Line   int
	Params []api.Param
}

// Get returns the value of name and whether it is set.
func (l Lead) Get(name string) (string, bool) {
	for _, p := range l.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// WithDefaults appends every default the lead does not set itself.
func (l Lead) WithDefaults(defaults []api.Param) Lead {
	out := Lead{Line: l.Line, Params: append([]api.Param(nil), l.Params...)}
	for _, d := range defaults {
		if _, ok := out.Get(d.Name); !ok {
			out.Params = append(out.Params, d)
		}
	}
	return out
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot detect lead file format from %q (use .yaml, .yml or .csv)", path)
	}
}

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid lead file format %q (use yaml or csv)", s)
	}
}

// Load reads a lead file. An empty format is detected from the extension.
func Load(path string, format Format) ([]Lead, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lead file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, format)
}

// Read decodes leads from r.
func Read(r io.Reader, format Format) ([]Lead, error) {
	var (
		leads []Lead
		err   error
	)
	switch format {
	case FormatYAML:
		leads, err = readYAML(r)
	case FormatCSV:
		leads, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported lead file format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNoLeads
	}
	if len(leads) > MaxLeads {
		return nil, fmt.Errorf("too many leads: %d (max %d)", len(leads), MaxLeads)
	}
	return leads, nil
}

// fields is a YAML mapping decoded in document order.
type fields struct {
	line   int
	params []api.Param
}

func (f *fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of parameter names to values", node.Line)
	}
	f.line = node.Line
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a scalar", val.Line, key.Value)
		}
		if err := validation.ValidateParam(key.Value, val.Value); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
		f.params = append(f.params, api.Param{Name: key.Value, Value: val.Value})
	}
	return nil
}

type yamlFile struct {
	Defaults fields   `yaml:"defaults"`
	Leads    []fields `yaml:"leads"`
}

func readYAML(r io.Reader) ([]Lead, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid YAML lead file: %w", err)
	}
	leads := make([]Lead, 0, len(doc.Leads))
	for _, f := range doc.Leads {
		lead := Lead{Line: f.line, Params: f.params}
		leads = append(leads, lead.WithDefaults(doc.Defaults.params))
	}
	return leads, nil
}

func readCSV(r io.Reader) ([]Lead, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV lead file: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			return nil, fmt.Errorf("invalid CSV lead file: empty column name at position %d", i+1)
		}
		if err := validation.ValidateParam(header[i], ""); err != nil {
			return nil, fmt.Errorf("invalid CSV lead file: column %d: %w", i+1, err)
		}
	}

	var leads []Lead
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV lead file: %w", err)
		}
		line, _ := cr.FieldPos(0)
		lead := Lead{Line: line}
		for i, v := range record {
			if v = strings.TrimSpace(v); v != "" {
				if err := validation.ValidateParam(header[i], v); err != nil {
					return nil, fmt.Errorf("invalid CSV lead file: line %d: %w", line, err)
				}
				lead.Params = append(lead.Params, api.Param{Name: header[i], Value: v})
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
