// pkg/model/table.go
package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrColumnNotFound is returned when a lookup names a column the table does not have
var ErrColumnNotFound = errors.New("column not found")

// Kind is the storage class of a column
type Kind int

const (
	// Numeric columns hold float64 values
	Numeric Kind = iota
	// Categorical columns hold string values
	Categorical
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a single named, typed column with a validity mask.
// Num is populated for Numeric columns, Str for Categorical ones.
type Column struct {
	Name  string
	Kind  Kind
	Num   []float64
	Str   []string
	Valid []bool
}

// NewNumericColumn creates an all-null numeric column of n rows
func NewNumericColumn(name string, n int) *Column {
	return &Column{
		Name:  name,
		Kind:  Numeric,
		Num:   make([]float64, n),
		Valid: make([]bool, n),
	}
}

// NewCategoricalColumn creates an all-null categorical column of n rows
func NewCategoricalColumn(name string, n int) *Column {
	return &Column{
		Name:  name,
		Kind:  Categorical,
		Str:   make([]string, n),
		Valid: make([]bool, n),
	}
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsNull reports whether row i is missing
func (c *Column) IsNull(i int) bool {
	return !c.Valid[i]
}

// SetFloat stores v at row i. NaN is stored as null.
func (c *Column) SetFloat(i int, v float64) {
	if math.IsNaN(v) {
		c.SetNull(i)
		return
	}
	c.Num[i] = v
	c.Valid[i] = true
}

// SetString stores v at row i of a categorical column
func (c *Column) SetString(i int, v string) {
	c.Str[i] = v
	c.Valid[i] = true
}

// SetNull marks row i as missing
func (c *Column) SetNull(i int) {
	c.Valid[i] = false
	if c.Kind == Numeric {
		c.Num[i] = 0
	} else {
		c.Str[i] = ""
	}
}

// Float returns the numeric value at row i and whether it is present
func (c *Column) Float(i int) (float64, bool) {
	if c.Kind != Numeric || !c.Valid[i] {
		return 0, false
	}
	return c.Num[i], true
}

// Text returns the categorical value at row i and whether it is present
func (c *Column) Text(i int) (string, bool) {
	if c.Kind != Categorical || !c.Valid[i] {
		return "", false
	}
	return c.Str[i], true
}

// Format renders row i the way it is written to CSV; null renders as "".
func (c *Column) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	if c.Kind == Numeric {
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	}
	return c.Str[i]
}

// NonNull counts the present values
func (c *Column) NonNull() int {
	n := 0
	for _, ok := range c.Valid {
		if ok {
			n++
		}
	}
	return n
}

// ValidFloats returns a copy of the present values of a numeric column
func (c *Column) ValidFloats() []float64 {
	out := make([]float64, 0, len(c.Num))
	for i, ok := range c.Valid {
		if ok {
			out = append(out, c.Num[i])
		}
	}
	return out
}

// FillFloat replaces nulls with v and returns how many cells were filled
func (c *Column) FillFloat(v float64) int {
	filled := 0
	for i, ok := range c.Valid {
		if !ok {
			c.Num[i] = v
			c.Valid[i] = true
			filled++
		}
	}
	return filled
}

// FillString replaces nulls with v and returns how many cells were filled
func (c *Column) FillString(v string) int {
	filled := 0
	for i, ok := range c.Valid {
		if !ok {
			c.Str[i] = v
			c.Valid[i] = true
			filled++
		}
	}
	return filled
}

// subset copies the rows listed in idx into a new column
func (c *Column) subset(idx []int) *Column {
	out := &Column{
		Name:  c.Name,
		Kind:  c.Kind,
		Valid: make([]bool, len(idx)),
	}
	if c.Kind == Numeric {
		out.Num = make([]float64, len(idx))
	} else {
		out.Str = make([]string, len(idx))
	}
	for j, i := range idx {
		out.Valid[j] = c.Valid[i]
		if c.Kind == Numeric {
			out.Num[j] = c.Num[i]
		} else {
			out.Str[j] = c.Str[i]
		}
	}
	return out
}

// Table is a column-oriented, row-aligned set of columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates an empty table whose columns will hold rows values each
func NewTable(rows int) *Table {
	return &Table{
		index: make(map[string]int),
		rows:  rows,
	}
}

// AddColumn appends c. Its length must match the table and its name must be new.
func (t *Table) AddColumn(c *Column) error {
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	if _, exists := t.index[c.Name]; exists {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return t.columns[i], nil
}

// Has reports whether the table has the named column
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column {
	return t.columns
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the numeric columns in order
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.columns {
		if c.Kind == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ReplaceColumn swaps in c for the existing column of the same name, keeping its position
func (t *Table) ReplaceColumn(c *Column) error {
	i, ok := t.index[c.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, c.Name)
	}
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	t.columns[i] = c
	return nil
}

// Drop removes the named columns. Every name must exist; on error nothing is removed.
func (t *Table) Drop(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !t.Has(name) {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
		}
		drop[name] = true
	}
	t.DropIf(func(c *Column) bool { return drop[c.Name] })
	return nil
}

// DropIf removes every column matching pred and returns the removed names
func (t *Table) DropIf(pred func(*Column) bool) []string {
	var (
		kept    []*Column
		removed []string
	)
	for _, c := range t.columns {
		if pred(c) {
			removed = append(removed, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	t.columns = kept
	t.reindex()
	return removed
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		t.index[c.Name] = i
	}
}

// Select builds a new table holding the rows at idx, in that order
func (t *Table) Select(idx []int) *Table {
	out := NewTable(len(idx))
	for _, c := range t.columns {
		// names are unique in t, so AddColumn cannot fail
		_ = out.AddColumn(c.subset(idx))
	}
	return out
}

// Filter builds a new table holding the rows where keep is true
func (t *Table) Filter(keep []bool) *Table {
	idx := make([]int, 0, t.rows)
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return t.Select(idx)
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	return t.Select(idx)
}

// RowNonNull counts the present values in row i
func (t *Table) RowNonNull(i int) int {
	n := 0
	for _, c := range t.columns {
		if c.Valid[i] {
			n++
		}
	}
	return n
}

// HasNulls reports whether any cell is missing
func (t *Table) HasNulls() bool {
	for _, c := range t.columns {
		if c.NonNull() != t.rows {
			return true
		}
	}
	return false
}

// DropNullRows returns a new table without the rows that contain a null
func (t *Table) DropNullRows() *Table {
	keep := make([]bool, t.rows)
	width := len(t.columns)
	for i := range keep {
		keep[i] = t.RowNonNull(i) == width
	}
	return t.Filter(keep)
}

// MangleDuplicateNames renames repeated names to name.1, name.2, ... in order of appearance
func MangleDuplicateNames(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		count, dup := seen[n]
		if !dup {
			seen[n] = 0
			out[i] = n
			continue
		}
		for {
			count++
			candidate := fmt.Sprintf("%s.%d", n, count)
			if !taken[candidate] {
				taken[candidate] = true
				seen[n] = count
				out[i] = candidate
				break
			}
		}
	}
	return out
}
