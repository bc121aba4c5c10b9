// Package ncio reads and writes NetCDF classic datasets through a
// schema-first interface. Output layouts are declared as a Schema value
// and handed to CreateFile; nothing about a product's dimension or
// variable names lives in this package.
package ncio

import "fmt"

// Type identifies the on-disk storage type of a variable.
type Type int

const (
	Float64 Type = iota
	Float32
	Int32
)

// Dim declares one dimension. A Len of zero marks the record dimension;
// the classic format allows at most one.
type Dim struct {
	Name string
	Len  int
}

// Attr is a single attribute. Value must be a string, []float64, or
// []int32.
type Attr struct {
	Name  string
	Value interface{}
}

// Var declares one variable. An empty Dims slice declares a scalar.
type Var struct {
	Name  string
	Dims  []string
	Type  Type
	Attrs []Attr
}

// Schema declares the full layout of one dataset.
type Schema struct {
	Dims        []Dim
	Vars        []Var
	GlobalAttrs []Attr
}

// Validate checks that the schema can be expressed in the classic
// format: at most one record dimension, every variable dimension
// declared, no duplicate names.
func (s Schema) Validate() error {
	lens := make(map[string]int, len(s.Dims))
	records := 0
	for _, d := range s.Dims {
		if d.Name == "" {
			return fmt.Errorf("dimension with empty name")
		}
		if _, dup := lens[d.Name]; dup {
			return fmt.Errorf("duplicate dimension %q", d.Name)
		}
		if d.Len < 0 {
			return fmt.Errorf("dimension %q has negative length %d", d.Name, d.Len)
		}
		if d.Len == 0 {
			records++
		}
		lens[d.Name] = d.Len
	}
	if records > 1 {
		return fmt.Errorf("classic format allows one record dimension, schema declares %d", records)
	}

	seen := make(map[string]bool, len(s.Vars))
	for _, v := range s.Vars {
		if v.Name == "" {
			return fmt.Errorf("variable with empty name")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate variable %q", v.Name)
		}
		seen[v.Name] = true
		for i, dn := range v.Dims {
			l, ok := lens[dn]
			if !ok {
				return fmt.Errorf("variable %q references undeclared dimension %q", v.Name, dn)
			}
			// Only the leading dimension may be the record dimension.
			if l == 0 && i > 0 {
				return fmt.Errorf("variable %q uses record dimension %q in position %d", v.Name, dn, i)
			}
		}
	}
	return nil
}

// size returns the element count for a variable, given the declared
// dimension lengths. Scalars have size one. Variables on the record
// dimension report zero until records exist.
func (s Schema) size(v Var) int {
	lens := make(map[string]int, len(s.Dims))
	for _, d := range s.Dims {
		lens[d.Name] = d.Len
	}
	n := 1
	for _, dn := range v.Dims {
		n *= lens[dn]
	}
	return n
}
