// Package handler содержит HTTP-обработчики панели продаж.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/sales-dashboard/internal/middleware"
	"github.com/mmeshcher/sales-dashboard/internal/model"
	"github.com/mmeshcher/sales-dashboard/internal/query"
	"github.com/mmeshcher/sales-dashboard/internal/service"
	"github.com/mmeshcher/sales-dashboard/internal/validation"
	"github.com/mmeshcher/sales-dashboard/internal/view"
)

const apiPrefix = "/api/"

const (
	invalidDateRangeMessage = "Start date must not be after end date."
	invalidInputMessage     = "Invalid input. Please check the form and try again."
)

var errBadRequest = errors.New("bad request")

// Service определяет контракт панели продаж, используемый HTTP-обработчиками.
type Service interface {
	Ensure(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string) error
	ApplyDateRange(ctx context.Context, sessionID, start, end string) error
	ApplyQuickRange(ctx context.Context, sessionID string, days int) error
	ApplyFilters(ctx context.Context, sessionID string, fs query.FilterSet) error
	ClearFilters(ctx context.Context, sessionID string) error
	ToggleSort(ctx context.Context, sessionID string, column model.SortField) error
	NextPage(ctx context.Context, sessionID string) error
	PrevPage(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) model.Dashboard
	RejectInput(ctx context.Context, sessionID, message string)
}

// Renderer рендерит страницу панели.
type Renderer interface {
	Render(w io.Writer, p view.Page) error
}

// Handler реализует HTTP-обработчики панели продаж.
type Handler struct {
	service     Service
	renderer    Renderer
	logger      *zap.Logger
	sessions    *middleware.SessionMiddleware
	corsOrigins []string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, renderer Renderer, logger *zap.Logger, sessions *middleware.SessionMiddleware, corsOrigins []string) *Handler {
	return &Handler{
		service:     s,
		renderer:    renderer,
		logger:      logger,
		sessions:    sessions,
		corsOrigins: corsOrigins,
	}
}

// Dashboard отдаёт HTML-страницу панели. Первая загрузка сессии выполняется здесь же.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.service.Ensure(r.Context(), sessionID); err != nil {
		h.logger.Debug("initial load failed", zap.String("session", sessionID), zap.Error(err))
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view.Build(h.service.Snapshot(r.Context(), sessionID))); err != nil {
		h.logger.Error("render dashboard error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// Snapshot отдаёт состояние панели в JSON.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.action(func(ctx context.Context, _ *http.Request, sessionID string) error {
		return h.service.Ensure(ctx, sessionID)
	})(w, r)
}

// Health сообщает, что сервис запущен.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type actionFunc func(ctx context.Context, r *http.Request, sessionID string) error

// action выполняет действие пользователя и завершает запрос:
// для /api отдаёт снимок в JSON, для HTML перенаправляет на панель.
func (h *Handler) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := middleware.SessionIDFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		err := fn(r.Context(), r, sessionID)
		switch {
		case err == nil:
		case errors.Is(err, errBadRequest):
			h.logger.Debug("invalid input",
				zap.String("uri", r.RequestURI),
				zap.Strings("fields", validation.FieldErrors(err)),
				zap.Error(err),
			)
			if strings.HasPrefix(r.URL.Path, apiPrefix) {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			h.service.RejectInput(r.Context(), sessionID, inputErrorMessage(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, service.ErrFetchFailed):
			status = http.StatusBadGateway
		default:
			h.logger.Error("dashboard action error", zap.String("uri", r.RequestURI), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(h.service.Snapshot(r.Context(), sessionID)); err != nil {
			h.logger.Error("encode snapshot error", zap.Error(err))
		}
	}
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func inputErrorMessage(err error) string {
	if errors.Is(err, validation.ErrInvalidDateRange) {
		return invalidDateRangeMessage
	}
	return invalidInputMessage
}

func (h *Handler) setDates(ctx context.Context, r *http.Request, sessionID string) error {
	form := validation.DateRangeForm{
		StartDate: r.FormValue("startDate"),
		EndDate:   r.FormValue("endDate"),
	}
	if err := validation.DateRange(form); err != nil {
		return badRequest(err)
	}
	return h.service.ApplyDateRange(ctx, sessionID, strings.TrimSpace(form.StartDate), strings.TrimSpace(form.EndDate))
}

func (h *Handler) setQuickRange(ctx context.Context, r *http.Request, sessionID string) error {
	days, err := strconv.Atoi(strings.TrimSpace(r.FormValue("days")))
	if err != nil {
		return badRequest(err)
	}
	if err := validation.QuickRange(validation.QuickRangeForm{Days: days}); err != nil {
		return badRequest(err)
	}
	return h.service.ApplyQuickRange(ctx, sessionID, days)
}

func (h *Handler) setFilters(ctx context.Context, r *http.Request, sessionID string) error {
	form, err := validation.Filters(validation.FilterForm{
		PriceMin: r.FormValue("priceMin"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
	})
	if err != nil {
		return badRequest(err)
	}
	return h.service.ApplyFilters(ctx, sessionID, query.FilterSet{
		PriceMin: form.PriceMin,
		Email:    form.Email,
		Phone:    form.Phone,
	})
}

func (h *Handler) clearFilters(ctx context.Context, _ *http.Request, sessionID string) error {
	return h.service.ClearFilters(ctx, sessionID)
}

func (h *Handler) toggleSort(ctx context.Context, r *http.Request, sessionID string) error {
	form := validation.SortForm{Column: chi.URLParam(r, "column")}
	if err := validation.Sort(form); err != nil {
		return badRequest(err)
	}
	return h.service.ToggleSort(ctx, sessionID, model.SortField(form.Column))
}

func (h *Handler) nextPage(ctx context.Context, _ *http.Request, sessionID string) error {
	return h.service.NextPage(ctx, sessionID)
}

func (h *Handler) prevPage(ctx context.Context, _ *http.Request, sessionID string) error {
	return h.service.PrevPage(ctx, sessionID)
}

func (h *Handler) refresh(ctx context.Context, _ *http.Request, sessionID string) error {
	return h.service.Refresh(ctx, sessionID)
}
