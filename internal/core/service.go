package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/hsncheck/internal/logging"
)

// ErrUnsupportedFileType is returned for uploads that are not .xlsx workbooks.
var ErrUnsupportedFileType = errors.New("unsupported file type")

const (
	// DefaultWorkers bounds parallel code evaluation in CheckAll.
	DefaultWorkers = 4

	// DefaultUploadTimeout is the maximum duration of one upload.
	DefaultUploadTimeout = 2 * time.Minute

	// TopInvalidCodes is how many frequent invalid codes the dashboard lists.
	TopInvalidCodes = 5

	// SourceEmpty names the version installed before any data is loaded.
	SourceEmpty = "empty"
)

// ServiceConfig tunes validation and upload handling.
// Zero values select the package defaults.
type ServiceConfig struct {
	Suggestions          int
	Cutoff               float64
	Workers              int
	InvalidLogCapacity   int
	MaxConcurrentUploads int
	MaxUploadWait        time.Duration
	UploadTimeout        time.Duration
}

// VersionInfo describes the reference data behind the current validator.
type VersionInfo struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	HSNRecords int       `json:"hsn_records"`
	SACRecords int       `json:"sac_records"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Dashboard summarizes invalid queries and the loaded data.
type Dashboard struct {
	InvalidCount int           `json:"invalid_count"`
	TopInvalid   []CodeCount   `json:"top_invalid"`
	LastUpdate   *time.Time    `json:"last_update"`
	Version      VersionInfo   `json:"version"`
	Uploads      LimiterStatus `json:"uploads"`
}

type version struct {
	info      VersionInfo
	validator *Validator
}

// Service owns the current validator and the state shared across requests.
//
// The validator is replaced wholesale on upload; readers always see either
// the old or the new version, never a mix.
type Service struct {
	cfg        ServiceConfig
	current    atomic.Pointer[version]
	lastUpdate atomic.Pointer[time.Time]
	invalid    *InvalidCodeLog
	limiter    *UploadLimiter
	now        func() time.Time
}

// NewService creates a Service with empty reference tables.
// Call Load to install real data.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = DefaultSuggestions
	}
	if cfg.Cutoff <= 0 || cfg.Cutoff > 1 {
		cfg.Cutoff = DefaultCutoff
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}

	s := &Service{
		cfg:     cfg,
		invalid: NewInvalidCodeLog(cfg.InvalidLogCapacity),
		limiter: NewUploadLimiter(cfg.MaxConcurrentUploads, cfg.MaxUploadWait),
		now:     time.Now,
	}
	s.install(Tables{HSN: Table{Key: TableHSN}, SAC: Table{Key: TableSAC}}, SourceEmpty)
	return s
}

// Load installs tables as the current reference data.
// Loading from the default source does not count as a data update.
func (s *Service) Load(ctx context.Context, tables Tables, source string) VersionInfo {
	info := s.install(tables, source)
	logging.FromContext(ctx).Info("reference data loaded",
		"version", info.ID,
		"source", info.Source,
		"hsn_records", info.HSNRecords,
		"sac_records", info.SACRecords,
		"warnings", len(info.Warnings),
	)
	for _, w := range info.Warnings {
		logging.FromContext(ctx).Warn("reference data warning", "version", info.ID, "warning", w)
	}
	return info
}

func (s *Service) install(tables Tables, source string) VersionInfo {
	v := NewValidator(tables.HSN, tables.SAC,
		WithSuggestions(s.cfg.Suggestions),
		WithCutoff(s.cfg.Cutoff),
		WithRecorder(s.invalid),
	)
	hsn, sac := v.CodeCount()

	info := VersionInfo{
		ID:         uuid.New().String(),
		Source:     source,
		LoadedAt:   s.now(),
		HSNRecords: hsn,
		SACRecords: sac,
		Warnings:   tables.Warnings,
	}
	s.current.Store(&version{info: info, validator: v})
	return info
}

// Validator returns the current validator.
func (s *Service) Validator() *Validator {
	return s.current.Load().validator
}

// Version returns information about the current reference data.
func (s *Service) Version() VersionInfo {
	return s.current.Load().info
}

// Process returns the formatted report for input.
func (s *Service) Process(ctx context.Context, input string) string {
	return s.Validator().Process(input)
}

// Check validates one code against the current data.
func (s *Service) Check(ctx context.Context, code string) Result {
	return s.Validator().Check(code)
}

// CheckAll validates every comma-separated code in input.
// Codes are evaluated in parallel; results keep input order and failures
// are recorded in input order.
func (s *Service) CheckAll(ctx context.Context, input string) ([]Result, error) {
	codes := SplitCodes(input)
	results := make([]Result, len(codes))
	if len(codes) == 0 {
		return results, nil
	}

	v := s.Validator()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, code := range codes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.Evaluate(code)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check codes: %w", err)
	}

	for _, r := range results {
		v.Observe(r)
	}
	return results, nil
}

// Upload replaces the reference data with the workbook read from r.
// The upload timeout starts once a slot is acquired and covers reading and
// parsing the workbook. On any error the current data stays in place.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (VersionInfo, error) {
	if r == nil {
		return VersionInfo{}, ErrNoFile
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return VersionInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileName)
	}

	ip, ua := ClientFromContext(ctx)
	log := logging.WithFields(ctx, "file", fileName, "client_ip", ip, "user_agent", ua)

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return VersionInfo{}, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	start := s.now()
	tables, err := LoadWorkbookContext(ctx, r)
	if err != nil {
		log.Error("upload failed", "error", err)
		return VersionInfo{}, fmt.Errorf("upload %s: %w", fileName, err)
	}

	info := s.Load(ctx, tables, fileName)
	s.invalid.Reset()
	now := s.now()
	s.lastUpdate.Store(&now)

	log.Info("upload completed",
		"version", info.ID,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)
	return info, nil
}

// Dashboard returns invalid-code statistics and the current data version.
func (s *Service) Dashboard() Dashboard {
	return Dashboard{
		InvalidCount: s.invalid.Total(),
		TopInvalid:   s.invalid.Top(TopInvalidCodes),
		LastUpdate:   s.lastUpdate.Load(),
		Version:      s.Version(),
		Uploads:      s.limiter.Status(),
	}
}

// InvalidCodeLog returns the log of codes that failed validation.
func (s *Service) InvalidCodeLog() *InvalidCodeLog {
	return s.invalid
}

// WaitForUploads blocks until running uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		slog.Warn("uploads still running at shutdown", "active", s.limiter.Active())
		return err
	}
	return nil
}
