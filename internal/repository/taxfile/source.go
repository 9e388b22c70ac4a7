// Package taxfile reads tax tables from a YAML document.
package taxfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"gopkg.in/yaml.v3"
)

type document struct {
	Tables []payroll.TaxTable `yaml:"tables"`
}

// Source loads tables from a YAML file on every call, so edits to the file
// are picked up by the next reload.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) LoadTaxTables(_ context.Context) ([]payroll.TaxTable, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", payroll.ErrTaxTableNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read tax table file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a tax table document. Unknown keys are rejected so a typo in
// a rate name cannot silently become a zero rate.
func Decode(r io.Reader) ([]payroll.TaxTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: tax table document is empty", payroll.ErrTaxTableInvalid)
		}
		return nil, fmt.Errorf("%w: %v", payroll.ErrTaxTableInvalid, err)
	}
	return doc.Tables, nil
}
