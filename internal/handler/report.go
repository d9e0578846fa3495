package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"orderreport/internal/batch"
	"orderreport/internal/lib/sl"
	"orderreport/internal/report"
	"orderreport/internal/service"
	"orderreport/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportGenerator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*service.Result, error)
}

type ReportLister interface {
	List() ([]string, error)
}

type ReportOpener interface {
	Open(name string) (*os.File, error)
}

type LinkSigner interface {
	Sign(fileName string) (string, error)
	Verify(token, fileName string) error
}

type generateRequest struct {
	StartDate string           `json:"start_date" validate:"required"`
	EndDate   string           `json:"end_date" validate:"required"`
	MinCost   *decimal.Decimal `json:"min_cost" validate:"required"`
	MaxCost   *decimal.Decimal `json:"max_cost" validate:"required"`
	Status    string           `json:"status" validate:"required"`
	Profile   string           `json:"profile,omitempty"`
	BatchID   string           `json:"batch_id,omitempty" validate:"omitempty,max=64"`
}

type generateResponse struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	BatchID     string `json:"batch_id"`
	Rows        int    `json:"rows"`
}

// GenerateReportHandler builds a report for the posted criteria and answers
// with a signed download link. A batch_id from an earlier response reuses
// that fetch instead of querying the order source again.
func GenerateReportHandler(log *slog.Logger, gen ReportGenerator, links LinkSigner, publicURL string) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.GenerateReport"
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req generateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			renderError(w, r, http.StatusBadRequest, "invalid json")
			return
		}

		if err := validate.Struct(req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				renderError(w, r, http.StatusBadRequest, validationMessage(verrs))
				return
			}
			renderError(w, r, http.StatusBadRequest, "invalid request")
			return
		}

		profile, err := report.ProfileByName(req.Profile)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		criteria, err := report.ParseCriteria(req.StartDate, req.EndDate, *req.MinCost, *req.MaxCost, req.Status)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		res, err := gen.Generate(r.Context(), service.GenerateRequest{
			Criteria: criteria,
			Profile:  profile,
			BatchID:  req.BatchID,
			Reuse:    req.BatchID != "",
		})
		if err != nil {
			status, msg := generateFailure(err)
			renderError(w, r, status, msg)
			return
		}

		token, err := links.Sign(res.FileName)
		if err != nil {
			log.Error("failed to sign download link", sl.Err(err))
			renderError(w, r, http.StatusInternalServerError, "failed to sign download link")
			return
		}

		render.JSON(w, r, generateResponse{
			DownloadURL: downloadURL(r, publicURL, res.FileName, token),
			FileName:    res.FileName,
			BatchID:     res.BatchID,
			Rows:        res.Rows,
		})
	}
}

func generateFailure(err error) (int, string) {
	switch {
	case errors.Is(err, batch.ErrBatchNotFound):
		return http.StatusNotFound, "batch not found"
	case errors.Is(err, batch.ErrInvalidKey):
		return http.StatusBadRequest, "invalid batch id"
	case errors.Is(err, service.ErrRemoteFetch):
		return http.StatusBadGateway, "order source unavailable"
	case errors.Is(err, report.ErrProfileMismatch):
		return http.StatusConflict, "batch was stored with another profile"
	case errors.Is(err, report.ErrMalformedTimestamp):
		return http.StatusBadGateway, "order source returned a malformed timestamp"
	default:
		return http.StatusInternalServerError, "report generation failed"
	}
}

func downloadURL(r *http.Request, publicURL, fileName, token string) string {
	base := strings.TrimRight(publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return fmt.Sprintf("%s/download-report/%s?token=%s", base, url.PathEscape(fileName), url.QueryEscape(token))
}

// DownloadReportHandler serves a report file as an attachment when the link
// token matches the file.
func DownloadReportHandler(log *slog.Logger, reports ReportOpener, links LinkSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")

		if err := links.Verify(r.URL.Query().Get("token"), name); err != nil {
			renderError(w, r, http.StatusForbidden, service.ErrInvalidLink.Error())
			return
		}

		f, err := reports.Open(name)
		if err != nil {
			if errors.Is(err, storage.ErrReportNotFound) || errors.Is(err, storage.ErrInvalidName) {
				renderError(w, r, http.StatusNotFound, "report not found")
				return
			}
			log.Error("failed to open report", "file", name, sl.Err(err))
			renderError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			log.Error("failed to stat report", "file", name, sl.Err(err))
			renderError(w, r, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

type reportEntry struct {
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}

// ListReportsHandler lists stored reports, each with a freshly signed
// download link.
func ListReportsHandler(log *slog.Logger, reports ReportLister, links LinkSigner, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := reports.List()
		if err != nil {
			log.Error("failed to list reports", sl.Err(err))
			renderError(w, r, http.StatusInternalServerError, "internal error")
			return
		}

		entries := make([]reportEntry, 0, len(names))
		for _, name := range names {
			token, err := links.Sign(name)
			if err != nil {
				log.Error("failed to sign download link", "file", name, sl.Err(err))
				renderError(w, r, http.StatusInternalServerError, "internal error")
				return
			}
			entries = append(entries, reportEntry{
				FileName:    name,
				DownloadURL: downloadURL(r, publicURL, name, token),
			})
		}
		render.JSON(w, r, entries)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
