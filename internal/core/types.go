// Package core provides the business logic for HSN/SAC code validation.
// This package has no UI dependencies and can be used by any frontend.
package core

// Record is a single row of a reference table.
type Record struct {
	Code        string
	Description string

	// HasDescription is false when the source had no description column,
	// in which case lookups fall back to DescriptionFallback.
	HasDescription bool
}

// Table is an ordered sequence of reference records for one code family.
type Table struct {
	Key     string // Registry key: "hsn" or "sac"
	Records []Record
}

// Len returns the number of records in the table.
func (t Table) Len() int {
	return len(t.Records)
}

// Tables holds both reference tables as loaded from a single source.
type Tables struct {
	HSN Table
	SAC Table

	// Warnings lists recoverable problems found while loading, such as a
	// missing sheet or column. The affected table is left empty.
	Warnings []string
}

// FieldSpec describes one column of a reference table.
type FieldSpec struct {
	Name       string              // Column header name, matched after trimming
	Required   bool                // A missing column empties the table; implied for the code column
	Normalizer func(string) string // Optional transformation applied to each cell
}

// TableInfo contains display and layout information about a reference table.
type TableInfo struct {
	Key   string // Unique identifier: "hsn"
	Label string // Display name: "HSN (goods)"
	Sheet int    // Zero-based sheet position inside the master workbook
}

// TableDefinition contains everything needed to read a reference table.
type TableDefinition struct {
	Info        TableInfo
	Code        FieldSpec
	Description FieldSpec
}

// HeaderIndex maps column names (lowercase, trimmed) to their position in a row.
type HeaderIndex map[string]int

// Status classifies the outcome of checking a single code.
type Status string

const (
	StatusInvalidFormat Status = "invalid_format"
	StatusNotFound      Status = "not_found"
	StatusValid         Status = "valid"
)

// HierarchyEntry reports whether one prefix of a code exists.
type HierarchyEntry struct {
	Prefix string `json:"prefix"`
	Exists bool   `json:"exists"`
}

// Result is the structured outcome of checking one code token.
type Result struct {
	Code        string           `json:"code"`
	Status      Status           `json:"status"`
	Valid       bool             `json:"valid"`
	Reason      string           `json:"reason,omitempty"`
	Description string           `json:"description,omitempty"`
	Hierarchy   []HierarchyEntry `json:"hierarchy,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
}
