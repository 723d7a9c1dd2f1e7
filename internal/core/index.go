package core

// codeIndex is the lookup structure derived from one reference table.
// It is built once and never mutated afterwards.
type codeIndex struct {
	codes        map[string]struct{}
	descriptions map[string]string

	// order lists normalized codes by first appearance in the source table.
	order []string
}

// newCodeIndex normalizes every record code and indexes it.
// Records with a blank code are skipped; for duplicate codes the first
// description wins.
func newCodeIndex(t Table) *codeIndex {
	ix := &codeIndex{
		codes:        make(map[string]struct{}, len(t.Records)),
		descriptions: make(map[string]string, len(t.Records)),
		order:        make([]string, 0, len(t.Records)),
	}

	for _, rec := range t.Records {
		code := NormalizeCode(rec.Code)
		if code == "" {
			continue
		}
		if _, seen := ix.codes[code]; seen {
			continue
		}
		ix.codes[code] = struct{}{}
		ix.order = append(ix.order, code)
		if rec.HasDescription {
			ix.descriptions[code] = rec.Description
		}
	}

	return ix
}

func (ix *codeIndex) has(code string) bool {
	_, ok := ix.codes[code]
	return ok
}

func (ix *codeIndex) description(code string) (string, bool) {
	desc, ok := ix.descriptions[code]
	return desc, ok
}

func (ix *codeIndex) len() int {
	return len(ix.order)
}
