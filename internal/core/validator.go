package core

import (
	"fmt"
	"strings"
)

const (
	// DefaultSuggestions is how many close matches are offered for an unknown code.
	DefaultSuggestions = 3

	// DefaultCutoff is the minimum similarity ratio for a suggestion.
	DefaultCutoff = 0.6

	// DescriptionFallback is returned when a code has no description on record.
	DescriptionFallback = "No description available."

	// NotFoundReason is reported to the recorder for codes missing from master data.
	NotFoundReason = "Not found"
)

// validLengths are the digit counts of the HSN/SAC hierarchy levels, ascending.
var validLengths = [...]int{2, 4, 6, 8}

// ValidLengths returns the accepted code lengths in ascending order.
func ValidLengths() []int {
	out := make([]int, len(validLengths))
	copy(out, validLengths[:])
	return out
}

// InvalidCodeRecorder receives every code that fails format or existence checks.
type InvalidCodeRecorder interface {
	RecordInvalid(code, reason string)
}

// Option configures a Validator.
type Option func(*Validator)

// WithSuggestions sets how many suggestions Suggest returns.
// Negative values are treated as zero.
func WithSuggestions(n int) Option {
	return func(v *Validator) {
		if n < 0 {
			n = 0
		}
		v.suggestions = n
	}
}

// WithCutoff sets the similarity cutoff for suggestions.
// Values outside [0, 1] are ignored.
func WithCutoff(cutoff float64) Option {
	return func(v *Validator) {
		if cutoff >= 0 && cutoff <= 1 {
			v.cutoff = cutoff
		}
	}
}

// WithRecorder attaches an observer for invalid and unknown codes.
func WithRecorder(r InvalidCodeRecorder) Option {
	return func(v *Validator) {
		v.recorder = r
	}
}

// Validator answers format, existence, description, hierarchy and suggestion
// queries against the HSN and SAC reference tables.
//
// A Validator is immutable once constructed and safe for concurrent use.
// Replacing the reference data means building a new Validator.
type Validator struct {
	hsn *codeIndex
	sac *codeIndex

	// known is the union of both code sets, HSN first, in source order.
	known []string

	suggestions int
	cutoff      float64
	recorder    InvalidCodeRecorder
}

// NewValidator builds the lookup indexes for both reference tables.
// Empty tables are allowed; every code is then reported as not found.
func NewValidator(hsn, sac Table, opts ...Option) *Validator {
	v := &Validator{
		hsn:         newCodeIndex(hsn),
		sac:         newCodeIndex(sac),
		suggestions: DefaultSuggestions,
		cutoff:      DefaultCutoff,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.known = make([]string, 0, v.hsn.len()+v.sac.len())
	v.known = append(v.known, v.hsn.order...)
	for _, code := range v.sac.order {
		if !v.hsn.has(code) {
			v.known = append(v.known, code)
		}
	}

	return v
}

// ValidateFormat checks that code is made only of ASCII digits and has one
// of the hierarchy lengths. The reason is empty when the format is valid.
func (v *Validator) ValidateFormat(code string) (bool, string) {
	if !isNumeric(code) {
		return false, "Must be numeric"
	}
	if !isValidLength(len(code)) {
		return false, fmt.Sprintf("Length must be 2, 4, 6, or 8 digits (got %d)", len(code))
	}
	return true, ""
}

// Exists reports whether code is present in either reference table.
// Matching ignores surrounding whitespace and letter case.
func (v *Validator) Exists(code string) bool {
	return v.exists(NormalizeCode(code))
}

func (v *Validator) exists(normalized string) bool {
	return v.hsn.has(normalized) || v.sac.has(normalized)
}

// Description returns the HSN description of code, else its SAC description,
// else DescriptionFallback.
func (v *Validator) Description(code string) string {
	normalized := NormalizeCode(code)
	if desc, ok := v.hsn.description(normalized); ok {
		return desc
	}
	if desc, ok := v.sac.description(normalized); ok {
		return desc
	}
	return DescriptionFallback
}

// Hierarchy checks each valid-length prefix of code, shortest first.
// Lengths longer than the code itself are skipped.
func (v *Validator) Hierarchy(code string) []HierarchyEntry {
	normalized := NormalizeCode(code)

	entries := make([]HierarchyEntry, 0, len(validLengths))
	for _, l := range validLengths {
		if len(normalized) < l {
			break
		}
		prefix := normalized[:l]
		entries = append(entries, HierarchyEntry{Prefix: prefix, Exists: v.exists(prefix)})
	}
	return entries
}

// Suggest returns up to the configured number of known codes most similar to code.
func (v *Validator) Suggest(code string) []string {
	return v.SuggestN(code, v.suggestions)
}

// SuggestN returns at most n known codes whose similarity to code is at or
// above the cutoff, best match first. Equal scores keep source table order.
func (v *Validator) SuggestN(code string, n int) []string {
	return closeMatches(NormalizeCode(code), v.known, n, v.cutoff)
}

// Check runs the full per-code pipeline and reports failures to the recorder.
func (v *Validator) Check(code string) Result {
	r := v.Evaluate(code)
	v.Observe(r)
	return r
}

// Evaluate runs format, existence, then description and hierarchy for codes
// that are found. It has no side effects.
func (v *Validator) Evaluate(code string) Result {
	if ok, reason := v.ValidateFormat(code); !ok {
		return Result{Code: code, Status: StatusInvalidFormat, Reason: reason}
	}

	if !v.Exists(code) {
		return Result{
			Code:        code,
			Status:      StatusNotFound,
			Reason:      NotFoundReason,
			Suggestions: v.Suggest(code),
		}
	}

	return Result{
		Code:        code,
		Status:      StatusValid,
		Valid:       true,
		Description: v.Description(code),
		Hierarchy:   v.Hierarchy(code),
	}
}

// Observe passes a failed result to the recorder.
func (v *Validator) Observe(r Result) {
	if !r.Valid {
		v.record(r.Code, r.Reason)
	}
}

// CodeCount returns the number of distinct codes per table.
func (v *Validator) CodeCount() (hsn, sac int) {
	return v.hsn.len(), v.sac.len()
}

func (v *Validator) record(code, reason string) {
	if v.recorder != nil {
		v.recorder.RecordInvalid(code, reason)
	}
}

// SplitCodes splits comma-separated input into trimmed, non-empty tokens,
// preserving their order.
func SplitCodes(input string) []string {
	parts := strings.Split(input, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isValidLength(n int) bool {
	for _, l := range validLengths {
		if n == l {
			return true
		}
	}
	return false
}
