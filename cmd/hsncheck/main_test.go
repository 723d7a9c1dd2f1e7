package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/hsncheck/internal/core"
)

func testValidator() *core.Validator {
	return core.NewValidator(
		core.Table{Key: core.TableHSN, Records: []core.Record{{Code: "1001", Description: "Wheat", HasDescription: true}}},
		core.Table{Key: core.TableSAC, Records: []core.Record{{Code: "9954", Description: "Construction", HasDescription: true}}},
	)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        []string
		wantNot     []string
		wantPrompts int
	}{
		{
			name:        "valid code then exit",
			input:       "1001\nexit\n",
			want:        []string{"✅ Code '1001' is valid.", "Wheat"},
			wantPrompts: 2,
		},
		{
			name:        "quit is case-insensitive",
			input:       "  QUIT \n1001\n",
			wantNot:     []string{"1001"},
			wantPrompts: 1,
		},
		{
			name:        "end of input",
			input:       "9954",
			want:        []string{"✅ Code '9954' is valid."},
			wantPrompts: 2,
		},
		{
			name:        "help",
			input:       "help\n",
			want:        []string{core.HelpText},
			wantPrompts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			if err := run(strings.NewReader(tt.input), &out, testValidator()); err != nil {
				t.Fatalf("run() error = %v", err)
			}

			got := out.String()
			if n := strings.Count(got, prompt); n != tt.wantPrompts {
				t.Errorf("prompts = %d, want %d", n, tt.wantPrompts)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(strings.ReplaceAll(got, prompt, ""), w) {
					t.Errorf("output should not contain %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestLoadTables_CSV(t *testing.T) {
	core.Clear()
	t.Cleanup(core.Clear)
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: core.TableHSN, Sheet: 0},
		Code: core.FieldSpec{Name: "HSNCode"}, Description: core.FieldSpec{Name: "Description"},
	})
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: core.TableSAC, Sheet: 1},
		Code: core.FieldSpec{Name: "SAC_CD"}, Description: core.FieldSpec{Name: "SAC_Description"},
	})

	dir := t.TempDir()
	hsn := filepath.Join(dir, "hsn.csv")
	sac := filepath.Join(dir, "sac.csv")
	os.WriteFile(hsn, []byte("HSNCode,Description\n1001,Wheat\n"), 0o600)
	os.WriteFile(sac, []byte("SAC_CD,SAC_Description\n9954,Construction\n"), 0o600)

	tables, source, err := loadTables("", hsn, sac)
	if err != nil {
		t.Fatalf("loadTables() error = %v", err)
	}
	if tables.HSN.Len() != 1 || tables.SAC.Len() != 1 {
		t.Errorf("records = %d/%d, want 1/1", tables.HSN.Len(), tables.SAC.Len())
	}
	if !strings.Contains(source, "hsn.csv") {
		t.Errorf("source = %q", source)
	}

	if _, _, err := loadTables("", hsn, ""); err == nil {
		t.Error("expected error when only one CSV is given")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATA_WORKBOOK_PATH", "/data/master.xlsx")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Data.WorkbookPath != "/data/master.xlsx" {
		t.Errorf("Data.WorkbookPath = %q", cfg.Data.WorkbookPath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("DATA_ALLOW_EMPTY", "sometimes")

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() expected error for a non-boolean DATA_ALLOW_EMPTY")
	}
}
