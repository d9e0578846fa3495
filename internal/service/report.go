package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"orderreport/internal/batch"
	"orderreport/internal/lib/sl"
	"orderreport/internal/metrics"
	"orderreport/internal/model"
	"orderreport/internal/report"
)

type OrderFetcher interface {
	Fetch(ctx context.Context) ([]model.RawOrder, error)
}

type ReportStorage interface {
	Save(ctx context.Context, name string, overwrite bool, write func(io.Writer) error) (string, error)
	List() ([]string, error)
	Open(name string) (*os.File, error)
}

type GenerateRequest struct {
	Criteria model.Criteria
	Profile  report.Profile
	// BatchID names the stored batch. Empty means a fresh key.
	BatchID string
	// Reuse skips fetching and reads the batch stored under BatchID.
	Reuse bool
}

type Result struct {
	FileName string `json:"file_name"`
	BatchID  string `json:"batch_id"`
	Rows     int    `json:"rows"`
}

// ReportService runs the report pipeline: fetch, normalize, store the batch,
// filter, transform and write. Steps run one after another; any failure
// aborts the whole generation.
type ReportService struct {
	log     *slog.Logger
	source  OrderFetcher
	batches batch.Store
	reports ReportStorage
	now     func() time.Time
}

func NewReportService(log *slog.Logger, source OrderFetcher, batches batch.Store, reports ReportStorage) *ReportService {
	return &ReportService{
		log:     log,
		source:  source,
		batches: batches,
		reports: reports,
		now:     time.Now,
	}
}

func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (res *Result, err error) {
	const op = "service.ReportService.Generate"
	log := s.log.With(slog.String("op", op), slog.String("profile", req.Profile.Name))

	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			log.Error("report generation failed", sl.Err(err))
		}
		metrics.ReportsGenerated.WithLabelValues(req.Profile.Name, outcome).Inc()
	}()

	key := req.BatchID
	if req.Reuse {
		if key == "" {
			return nil, fmt.Errorf("%s: %w", op, batch.ErrInvalidKey)
		}
	} else {
		if key == "" {
			key = batch.NewKey()
		}
		if err := s.refresh(ctx, req.Profile, key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	orders, err := s.batches.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: load batch: %w", op, err)
	}
	if req.Reuse {
		if err := req.Profile.CheckBatch(orders); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	filtered, err := report.Filter(req.Profile, orders, req.Criteria)
	if err != nil {
		return nil, fmt.Errorf("%s: filter: %w", op, err)
	}
	table := report.Transform(req.Profile, filtered)

	name, err := s.reports.Save(ctx, req.Profile.FileName(s.now()), req.Profile.Overwrite, func(w io.Writer) error {
		return report.WriteXLSX(w, table)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RowsExported.Observe(float64(len(table.Rows)))
	log.Info("report generated", "file", name, "batch", key, "orders", len(orders), "rows", len(table.Rows))

	return &Result{FileName: name, BatchID: key, Rows: len(table.Rows)}, nil
}

// refresh fetches the upstream orders, normalizes them and stores the batch.
func (s *ReportService) refresh(ctx context.Context, p report.Profile, key string) error {
	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}

	orders, err := report.Normalize(p, raw)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	if err := s.batches.Save(ctx, key, orders); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	return nil
}

func (s *ReportService) List() ([]string, error) {
	return s.reports.List()
}

func (s *ReportService) Open(name string) (*os.File, error) {
	return s.reports.Open(name)
}
