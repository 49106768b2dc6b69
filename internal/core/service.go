package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/intake/internal/logging"
	"github.com/JonMunkholm/intake/internal/metrics"
	"github.com/JonMunkholm/intake/internal/schema"
)

// DefaultMaxFileSize is the upload ceiling used when Options leaves it unset (10 MiB).
const DefaultMaxFileSize int64 = 10 << 20

// Options tune the pipeline. Zero values fall back to the defaults.
type Options struct {
	MaxFileSize        int64
	TempDir            string
	QuotedFields       bool
	PreviewRows        int
	ImportResponseRows int
	MaxConcurrent      int
	MaxWaitTime        time.Duration
	Now                func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = 5
	}
	if o.ImportResponseRows <= 0 {
		o.ImportResponseRows = 10
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service runs the ingestion pipeline. It holds no per-request state, so one
// Service serves concurrent requests.
type Service struct {
	registry    *schema.Registry
	persister   Persister
	parser      Parser
	transformer Transformer
	limiter     *UploadLimiter
	opts        Options
}

// NewService wires a pipeline over the given schemas and store.
func NewService(reg *schema.Registry, persister Persister, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		registry:    reg,
		persister:   persister,
		parser:      Parser{Quoted: opts.QuotedFields},
		transformer: Transformer{Now: opts.Now},
		limiter:     NewUploadLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		opts:        opts,
	}
}

// Schemas lists every registered data type.
func (s *Service) Schemas() []schema.FieldConfig {
	return s.registry.All()
}

// Schema returns one data type's configuration.
func (s *Service) Schema(dataType string) (schema.FieldConfig, error) {
	cfg, ok := s.registry.Get(dataType)
	if !ok {
		return schema.FieldConfig{}, fmt.Errorf("%w: %q", ErrUnknownDataType, dataType)
	}
	return cfg, nil
}

// Template returns the header-only CSV document for dataType.
func (s *Service) Template(dataType string) (string, error) {
	cfg, err := s.Schema(dataType)
	if err != nil {
		return "", err
	}
	return cfg.Template(), nil
}

// Validate checks a header row against dataType and suggests a column mapping.
func (s *Service) Validate(req ValidateRequest) (*ValidateResponse, error) {
	cfg, err := s.Schema(req.DataType)
	if err != nil {
		return nil, err
	}
	return &ValidateResponse{
		Validation:       ValidateStructure(req.Headers, cfg),
		SuggestedMapping: SuggestMapping(req.Headers, cfg),
	}, nil
}

// Upload parses and validates one file and returns transformed records.
//
// Request-level problems (size, file type, busy) are returned as errors before
// any parsing. Everything found in the data itself is reported in
// UploadResult.Validation; Data is withheld unless every stage passed.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	log := logging.WithFields(ctx, clientAttrs(ctx)...)

	if req.DataType == "" {
		req.DataType = schema.Financial
	}
	cfg, err := s.Schema(req.DataType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return nil, err
	}
	if err := s.checkUpload(req); err != nil {
		metrics.UploadsTotal.WithLabelValues(cfg.Key, metrics.OutcomeRejected).Inc()
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		metrics.UploadsTotal.WithLabelValues(cfg.Key, metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("upload %s: %w", req.FileName, err)
	}
	metrics.UploadsActive.Inc()
	defer func() {
		metrics.UploadsActive.Dec()
		s.limiter.Release()
	}()

	start := time.Now()
	text, n, err := spoolUpload(req.Body, s.opts.TempDir, s.opts.MaxFileSize)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(cfg.Key, metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("upload %s: %w", req.FileName, err)
	}
	metrics.UploadBytes.WithLabelValues(cfg.Key).Add(float64(n))
	metrics.ObserveStage("read", start)

	result := s.process(ctx, cfg, req.FileName, text)

	outcome := metrics.OutcomeValid
	if !result.Validation.IsValid {
		outcome = metrics.OutcomeInvalid
	}
	metrics.UploadsTotal.WithLabelValues(cfg.Key, outcome).Inc()

	log.Info("upload processed",
		slog.String("file", req.FileName),
		slog.String("data_type", cfg.Key),
		slog.Int64("bytes", n),
		slog.Int("rows", result.RowCount),
		slog.Int("errors", len(result.Validation.Errors)),
		slog.Int("warnings", len(result.Validation.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// process runs parse, validate and transform over already-read text.
func (s *Service) process(ctx context.Context, cfg schema.FieldConfig, fileName, text string) *UploadResult {
	log := logging.FromContext(ctx)

	start := time.Now()
	table := s.parser.Parse(text)
	metrics.ObserveStage("parse", start)
	metrics.RowsParsed.WithLabelValues(cfg.Key).Add(float64(len(table.Rows)))
	log.Debug("parsed upload", slog.Int("headers", len(table.Headers)), slog.Int("rows", len(table.Rows)))

	result := &UploadResult{
		FileName: fileName,
		DataType: cfg.Key,
		Headers:  table.Headers,
		RowCount: len(table.Rows),
		Preview:  []DomainRecord{},
	}

	if table.Empty() {
		v := newValidationResult()
		v.addError(EmptyFileMessage)
		metrics.ValidationErrors.WithLabelValues(cfg.Key, "structure").Inc()
		result.Validation = v
		result.Message = "File uploaded with validation errors"
		return result
	}

	start = time.Now()
	validation := ValidateStructure(table.Headers, cfg)
	metrics.ValidationErrors.WithLabelValues(cfg.Key, "structure").Add(float64(len(validation.Errors)))
	if !validation.IsValid {
		metrics.ObserveStage("validate", start)
		log.Debug("structural validation failed", slog.Any("errors", validation.Errors))
		result.Validation = validation
		result.Message = "File uploaded with validation errors"
		return result
	}

	records := table.Records()
	typed := ValidateTypes(records, cfg.Types)
	metrics.ValidationErrors.WithLabelValues(cfg.Key, "type").Add(float64(len(typed.Errors)))
	validation = validation.Merge(typed)
	metrics.ObserveStage("validate", start)

	start = time.Now()
	transformed, err := s.transformer.Transform(cfg, records)
	metrics.ObserveStage("transform", start)
	if err != nil {
		// cfg came from the registry, so this only happens for a malformed schema.
		log.Error("transform failed", slog.String("error", err.Error()))
		validation.addError(err.Error())
		transformed = nil
	}

	result.Validation = validation
	result.Preview = head(transformed, s.opts.PreviewRows)
	if validation.IsValid {
		result.Data = transformed
		result.Message = "File uploaded and validated successfully"
	} else {
		result.Message = "File uploaded with validation errors"
	}
	return result
}

// Import transforms rows (remapping them first when a mapping is given) and
// hands the batch to the store.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	log := logging.WithFields(ctx, clientAttrs(ctx)...)

	if req.DataType == "" {
		req.DataType = schema.Financial
	}
	cfg, err := s.Schema(req.DataType)
	if err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("import %s: %w", cfg.Key, ErrNoRecords)
	}

	rows := req.Data
	if len(req.Mapping) > 0 {
		start := time.Now()
		rows = ApplyMapping(rows, req.Mapping)
		metrics.ObserveStage("map", start)
	}

	start := time.Now()
	records, err := s.transformer.Transform(cfg, rows)
	metrics.ObserveStage("transform", start)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now().UTC()
	batch := Batch{
		ID:        uuid.New(),
		DataType:  cfg.Key,
		Records:   records,
		CreatedAt: now,
	}
	batch.FileName = FileTag(cfg.Key, now, batch.ID)

	start = time.Now()
	if err := s.persister.SaveBatch(ctx, batch); err != nil {
		metrics.StoreErrors.WithLabelValues(cfg.Key).Inc()
		return nil, fmt.Errorf("save batch %s: %w: %w", batch.FileName, ErrStore, err)
	}
	metrics.ObserveStage("persist", start)
	metrics.RecordsImported.WithLabelValues(cfg.Key).Add(float64(len(records)))

	log.Info("batch imported",
		slog.String("batch_id", batch.ID.String()),
		slog.String("file", batch.FileName),
		slog.String("data_type", cfg.Key),
		slog.Int("records", len(records)),
		slog.Bool("mapped", len(req.Mapping) > 0),
	)

	return &ImportResult{
		Message:     fmt.Sprintf("Successfully imported %d records", len(records)),
		BatchID:     batch.ID.String(),
		FileName:    batch.FileName,
		RecordCount: len(records),
		Data:        head(records, s.opts.ImportResponseRows),
	}, nil
}

// FileTag names a persisted batch: {dataType}_{unix millis}_{first 8 hex of id}.json
func FileTag(dataType string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s_%d_%s.json", dataType, at.UnixMilli(), id.String()[:8])
}

// LimiterStatus reports upload slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func head(records []DomainRecord, n int) []DomainRecord {
	if len(records) > n {
		records = records[:n]
	}
	out := make([]DomainRecord, len(records))
	copy(out, records)
	return out
}
