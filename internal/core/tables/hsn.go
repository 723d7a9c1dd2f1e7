package tables

import "github.com/JonMunkholm/hsncheck/internal/core"

func init() {
	registerHSN()
}

func registerHSN() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableHSN,
			Label: "HSN (goods)",
			Sheet: 0,
		},
		Code:        core.FieldSpec{Name: "HSNCode", Normalizer: NormalizeNumericCode},
		Description: core.FieldSpec{Name: "Description"},
	})
}
