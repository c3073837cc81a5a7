package export_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	handler "github.com/MrJamesThe3rd/buildestimate/internal/http/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

func newRouter(t *testing.T, lister *export.MockInvoiceLister, actor auth.Actor) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithActor(req.Context(), actor)))
		})
	})
	handler.NewHandler(export.NewService(lister)).Routes(r)

	return r
}

func sampleInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:            uuid.New(),
		Number:        "INV000001",
		Status:        invoice.StatusPartialPaid,
		Customer:      document.CustomerInfo{Name: "Ravi Kumar"},
		Totals:        document.Totals{TotalAmount: decimal.NewFromInt(1000)},
		PaidAmount:    decimal.NewFromInt(400),
		BalanceAmount: decimal.NewFromInt(600),
		CreatedAt:     time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Summary(t *testing.T) {
	trader := auth.Actor{ID: uuid.New(), Role: auth.RoleTrader}

	type testCase struct {
		name       string
		body       string
		setup      func(lister *export.MockInvoiceLister)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "Empty body exports everything",
			setup: func(lister *export.MockInvoiceLister) {
				lister.EXPECT().Scoped(gomock.Any(), trader, invoice.ListFilter{}).
					Return([]*invoice.Invoice{sampleInvoice()}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "INV000001",
		},
		{
			name: "Status filter is passed through",
			body: `{"status":"overdue"}`,
			setup: func(lister *export.MockInvoiceLister) {
				lister.EXPECT().Scoped(gomock.Any(), trader, invoice.ListFilter{Status: new(invoice.StatusOverdue)}).
					Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "0 invoices",
		},
		{
			name:       "Unknown status",
			body:       `{"status":"settled"}`,
			setup:      func(*export.MockInvoiceLister) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "status",
		},
		{
			name:       "End before start",
			body:       `{"startDate":"2026-10-01T00:00:00Z","endDate":"2026-09-01T00:00:00Z"}`,
			setup:      func(*export.MockInvoiceLister) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "endDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := export.NewMockInvoiceLister(gomock.NewController(t))
			tt.setup(lister)

			req := httptest.NewRequest(http.MethodPost, "/invoices/summary", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			newRouter(t, lister, trader).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_Download(t *testing.T) {
	trader := auth.Actor{ID: uuid.New(), Role: auth.RoleTrader}
	lister := export.NewMockInvoiceLister(gomock.NewController(t))
	lister.EXPECT().Scoped(gomock.Any(), trader, invoice.ListFilter{}).
		Return([]*invoice.Invoice{sampleInvoice()}, nil)

	rec := httptest.NewRecorder()
	newRouter(t, lister, trader).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Invoice-Count"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	assert.NotZero(t, rec.Body.Len())

	// XLSX is a zip container.
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestHandler_DownloadError(t *testing.T) {
	customer := auth.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
	lister := export.NewMockInvoiceLister(gomock.NewController(t))
	lister.EXPECT().Scoped(gomock.Any(), customer, gomock.Any()).Return(nil, assert.AnError)

	rec := httptest.NewRecorder()
	newRouter(t, lister, customer).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["error"])
}
