package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"orderreport/internal/batch"
	"orderreport/internal/report"
	"orderreport/internal/service"
	"orderreport/internal/storage"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req service.GenerateRequest) (*service.Result, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*service.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

const validBody = `{"start_date": "2024-03-01", "end_date": "2024-03-31T23:59:59",
	"min_cost": 100, "max_cost": 1000, "status": "All"}`

func TestGenerateReportHandler(t *testing.T) {
	links := service.NewLinkSigner("link-secret", time.Hour)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockGenerator)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "report generated",
			body: validBody,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.MatchedBy(func(req service.GenerateRequest) bool {
					return req.Profile == report.Detailed && req.Criteria.Status == "all" &&
						req.Criteria.MinCost.IntPart() == 100 && !req.Reuse && req.BatchID == "" &&
						req.Criteria.EndDate.Equal(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
				})).Return(&service.Result{FileName: "report_05.03.24_14.22.01.xlsx", BatchID: "b1", Rows: 3}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"file_name":"report_05.03.24_14.22.01.xlsx"`,
		},
		{
			name: "batch reused with compact profile",
			body: `{"start_date": "2024-03-01", "end_date": "2024-03-31", "min_cost": "0", "max_cost": "10",
				"status": "accepted", "profile": "compact", "batch_id": "b1"}`,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.MatchedBy(func(req service.GenerateRequest) bool {
					return req.Profile == report.Compact && req.Reuse && req.BatchID == "b1"
				})).Return(&service.Result{FileName: report.CompactFileName, BatchID: "b1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"batch_id":"b1"`,
		},
		{
			name:           "invalid json",
			body:           `{"start_date": `,
			setupMock:      func(*MockGenerator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid json"}`,
		},
		{
			name:           "missing fields",
			body:           `{"start_date": "2024-03-01", "end_date": "2024-03-31", "status": "all"}`,
			setupMock:      func(*MockGenerator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field MinCost is a required field, field MaxCost is a required field`,
		},
		{
			name:           "min above max",
			body:           `{"start_date": "2024-03-01", "end_date": "2024-03-31", "min_cost": 10, "max_cost": 1, "status": "all"}`,
			setupMock:      func(*MockGenerator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid criteria`,
		},
		{
			name:           "bad date",
			body:           `{"start_date": "March", "end_date": "2024-03-31", "min_cost": 1, "max_cost": 10, "status": "all"}`,
			setupMock:      func(*MockGenerator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid criteria`,
		},
		{
			name:           "unknown profile",
			body:           `{"start_date": "2024-03-01", "end_date": "2024-03-31", "min_cost": 1, "max_cost": 10, "status": "all", "profile": "weekly"}`,
			setupMock:      func(*MockGenerator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `unknown profile`,
		},
		{
			name: "order source down",
			body: validBody,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("op: %w", service.ErrRemoteFetch))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"order source unavailable"}`,
		},
		{
			name: "malformed upstream timestamp",
			body: validBody,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("op: %w", report.ErrMalformedTimestamp))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `malformed timestamp`,
		},
		{
			name: "batch stored with another profile",
			body: `{"start_date": "2024-03-01", "end_date": "2024-03-31", "min_cost": 1, "max_cost": 10, "status": "all",
				"profile": "compact", "batch_id": "b1"}`,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("op: %w", report.ErrProfileMismatch))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"batch was stored with another profile"}`,
		},
		{
			name: "unknown batch",
			body: `{"start_date": "2024-03-01", "end_date": "2024-03-31", "min_cost": 1, "max_cost": 10, "status": "all", "batch_id": "nope"}`,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.Anything).Return(nil, batch.ErrBatchNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"batch not found"}`,
		},
		{
			name: "write failure",
			body: validBody,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("op: %w", storage.ErrFileWrite))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"report generation failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			tt.setupMock(gen)

			handler := GenerateReportHandler(testLogger(), gen, links, "")
			req := httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			gen.AssertExpectations(t)
		})
	}
}

func TestGenerateReportHandler_DownloadURL(t *testing.T) {
	links := service.NewLinkSigner("link-secret", time.Hour)
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(&service.Result{FileName: "report_05.03.24_14.22.01.xlsx", BatchID: "b1", Rows: 1}, nil)

	handler := GenerateReportHandler(testLogger(), gen, links, "https://reports.example.com/")
	req := httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	u, err := url.Parse(resp.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, "reports.example.com", u.Host)
	assert.Equal(t, "/download-report/report_05.03.24_14.22.01.xlsx", u.Path)
	assert.NoError(t, links.Verify(u.Query().Get("token"), resp.FileName))
	assert.Equal(t, 1, resp.Rows)
}

func newDownloadRouter(t *testing.T) (*chi.Mux, *storage.Local, *service.LinkSigner) {
	t.Helper()
	reports, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	links := service.NewLinkSigner("link-secret", time.Hour)

	r := chi.NewRouter()
	r.Get("/download-report/{filename}", DownloadReportHandler(testLogger(), reports, links))
	r.Get("/list-reports", ListReportsHandler(testLogger(), reports, links, ""))
	return r, reports, links
}

func TestDownloadReportHandler(t *testing.T) {
	r, reports, links := newDownloadRouter(t)
	name, err := reports.Save(context.Background(), "report_05.03.24_14.22.01.xlsx", false, func(w io.Writer) error {
		_, err := io.WriteString(w, "xlsx-bytes")
		return err
	})
	require.NoError(t, err)

	token, err := links.Sign(name)
	require.NoError(t, err)
	otherToken, err := links.Sign("missing.xlsx")
	require.NoError(t, err)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "valid link", path: "/download-report/" + name + "?token=" + token, expectedStatus: http.StatusOK},
		{name: "no token", path: "/download-report/" + name, expectedStatus: http.StatusForbidden},
		{name: "token for another file", path: "/download-report/" + name + "?token=" + otherToken, expectedStatus: http.StatusForbidden},
		{name: "missing file", path: "/download-report/missing.xlsx?token=" + otherToken, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "xlsx-bytes", w.Body.String())
				assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
				assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
			}
		})
	}
}

func TestListReportsHandler(t *testing.T) {
	r, reports, links := newDownloadRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list-reports", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, name := range []string{"b.xlsx", "a.xlsx"} {
		_, err := reports.Save(context.Background(), name, true, func(w io.Writer) error {
			_, err := io.WriteString(w, name)
			return err
		})
		require.NoError(t, err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list-reports", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entries []reportEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a.xlsx", entries[0].FileName)
	assert.Equal(t, "b.xlsx", entries[1].FileName)

	for _, e := range entries {
		u, err := url.Parse(e.DownloadURL)
		require.NoError(t, err)
		assert.Equal(t, "/download-report/"+e.FileName, u.Path)
		assert.NoError(t, links.Verify(u.Query().Get("token"), e.FileName))

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, e.FileName, w.Body.String())
	}
}

type failingLister struct{}

func (failingLister) List() ([]string, error) { return nil, errors.New("disk gone") }

func TestListReportsHandler_Error(t *testing.T) {
	links := service.NewLinkSigner("link-secret", time.Hour)
	w := httptest.NewRecorder()
	ListReportsHandler(testLogger(), failingLister{}, links, "").
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list-reports", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

const workflowOrders = `[
	{"created_at": "2024-03-05T14:22:01.123456", "total_cost": 500, "status": "succeeded",
	 "order_number": "A1", "user_full_name": "Ivan", "full_address": "Main St", "code": "PROMO10"},
	{"created_at": "2024-03-20T09:00:00", "total_cost": 50, "status": "accepted",
	 "order_number": "A2", "user_full_name": "Olga", "full_address": "Second St"}
]`

func TestReportWorkflow_GenerateListDownload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, workflowOrders)
	}))
	t.Cleanup(upstream.Close)

	batches, err := batch.NewFileStore(t.TempDir())
	require.NoError(t, err)
	reports, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	links := service.NewLinkSigner("link-secret", time.Hour)
	svc := service.NewReportService(testLogger(), service.NewOrderSource(upstream.URL, time.Second), batches, reports)

	r := chi.NewRouter()
	r.Post("/generate-report", GenerateReportHandler(testLogger(), svc, links, ""))
	r.Get("/list-reports", ListReportsHandler(testLogger(), svc, links, ""))
	r.Get("/download-report/{filename}", DownloadReportHandler(testLogger(), svc, links))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(validBody)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var generated generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	assert.Equal(t, 1, generated.Rows)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list-reports", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entries []reportEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, generated.FileName, entries[0].FileName)

	u, err := url.Parse(entries[0].DownloadURL)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), generated.FileName)

	book, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ivan", rows[1][0])
	assert.Equal(t, "Оплачен", rows[1][4])
}
