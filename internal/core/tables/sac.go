package tables

import "github.com/JonMunkholm/hsncheck/internal/core"

func init() {
	registerSAC()
}

func registerSAC() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableSAC,
			Label: "SAC (services)",
			Sheet: 1,
		},
		Code:        core.FieldSpec{Name: "SAC_CD", Normalizer: NormalizeNumericCode},
		Description: core.FieldSpec{Name: "SAC_Description"},
	})
}
