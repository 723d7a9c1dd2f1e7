package core

// newTestValidator returns a validator over a small, hand-built master table.
//
// HSN: 01, 0101, 010121, 01012100, 1001, 123456
// SAC: 99, 9954, 995411
func newTestValidator(opts ...Option) *Validator {
	return NewValidator(testHSN(), testSAC(), opts...)
}

func testHSN() Table {
	return Table{Key: TableHSN, Records: []Record{
		{Code: "01", Description: "Live animals", HasDescription: true},
		{Code: "0101", Description: "Live horses, asses, mules and hinnies", HasDescription: true},
		{Code: "010121", Description: "Pure-bred breeding horses", HasDescription: true},
		{Code: "01012100", Description: "Pure-bred breeding animals", HasDescription: true},
		{Code: "1001", Description: "Wheat and meslin", HasDescription: true},
		{Code: "123456", Description: "Sample goods", HasDescription: true},
	}}
}

func testSAC() Table {
	return Table{Key: TableSAC, Records: []Record{
		{Code: "99", Description: "All services", HasDescription: true},
		{Code: "9954", Description: "Construction services", HasDescription: true},
		{Code: "995411", Description: "Construction of single dwelling buildings", HasDescription: true},
	}}
}

type recordedCode struct {
	code   string
	reason string
}

type fakeRecorder struct {
	entries []recordedCode
}

func (f *fakeRecorder) RecordInvalid(code, reason string) {
	f.entries = append(f.entries, recordedCode{code: code, reason: reason})
}
