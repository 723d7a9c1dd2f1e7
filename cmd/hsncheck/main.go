// Command hsncheck validates HSN and SAC codes from an interactive prompt.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/hsncheck/internal/config"
	"github.com/JonMunkholm/hsncheck/internal/core"
	_ "github.com/JonMunkholm/hsncheck/internal/core/tables" // Register HSN and SAC tables
	"github.com/JonMunkholm/hsncheck/internal/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const prompt = "Enter HSN or SAC code(s) (comma separated), or type 'help' for usage instructions: "

// cliConfig is the part of the server configuration the CLI honours.
// Flags override it.
type cliConfig struct {
	Data    config.DataConfig
	Logging config.LoggingConfig
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return cliConfig{}, fmt.Errorf("config load: %w", err)
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	file := flag.String("file", cfg.Data.WorkbookPath, "master workbook (.xlsx)")
	hsnCSV := flag.String("hsn-csv", "", "read the HSN table from CSV instead of the workbook")
	sacCSV := flag.String("sac-csv", "", "read the SAC table from CSV (requires -hsn-csv)")
	logLevel := flag.String("log-level", cfg.Logging.Level, "log level")
	flag.Parse()

	slog.SetDefault(logging.New(os.Stderr, *logLevel, cfg.Logging.Format))

	tables, source, err := loadTables(*file, *hsnCSV, *sacCSV)
	if err != nil {
		slog.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}

	service := core.NewService(core.ServiceConfig{})
	service.Load(context.Background(), tables, source)

	if err := run(os.Stdin, os.Stdout, service.Validator()); err != nil {
		slog.Error("read input", "error", err)
		os.Exit(1)
	}
}

// loadTables reads the reference data from CSV when both paths are set,
// otherwise from the workbook.
func loadTables(workbook, hsnPath, sacPath string) (core.Tables, string, error) {
	if hsnPath == "" && sacPath == "" {
		tables, err := core.LoadWorkbookFile(workbook)
		return tables, workbook, err
	}
	if hsnPath == "" || sacPath == "" {
		return core.Tables{}, "", fmt.Errorf("-hsn-csv and -sac-csv must be used together")
	}

	hsn, err := os.Open(hsnPath)
	if err != nil {
		return core.Tables{}, "", err
	}
	defer hsn.Close()

	sac, err := os.Open(sacPath)
	if err != nil {
		return core.Tables{}, "", err
	}
	defer sac.Close()

	tables, err := core.LoadCSVTables(hsn, sac)
	return tables, hsnPath + "," + sacPath, err
}

// run answers each input line until exit, quit or end of input.
func run(in io.Reader, out io.Writer, v *core.Validator) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := scanner.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			return nil
		}

		fmt.Fprintln(out, v.Process(line))
	}
}
