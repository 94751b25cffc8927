// Package ui exposes the product admin screen over HTTP. Every POST applies
// one screen transition and redirects back to the page.
package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/shopadmin/internal/admin/dialog"
	"github.com/abgdnv/shopadmin/internal/admin/product"
	"github.com/abgdnv/shopadmin/internal/admin/screen"
	"github.com/abgdnv/shopadmin/internal/admin/view"
	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/abgdnv/shopadmin/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BasePath is where the screen is mounted.
const BasePath = "/admin/products"

// HealthCheck reports whether an upstream dependency is ready.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	registry *screen.Registry
	renderer *view.Renderer
	session  config.SessionConfig
	checks   []HealthCheck
	guard    func(http.Handler) http.Handler
	logger   *slog.Logger
}

// NewHandler creates the screen handler. guard, when not nil, protects the
// screen routes; checks are run by the readiness probe.
func NewHandler(registry *screen.Registry, renderer *view.Renderer, session config.SessionConfig,
	guard func(http.Handler) http.Handler, logger *slog.Logger, checks ...HealthCheck) *Handler {
	return &Handler{
		registry: registry,
		renderer: renderer,
		session:  session,
		checks:   checks,
		guard:    guard,
		logger:   logger.With("component", "web"),
	}
}

// RegisterRoutes registers the screen routes on the provided chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Use(h.sessionMiddleware)
		r.Get("/", h.Show)
		r.Post("/new", h.OpenCreate)
		r.Post("/{id}/edit", h.OpenEdit)
		r.Post("/{id}/delete", h.OpenDelete)
		r.Post("/save-dialog/hide", h.HideSaveDialog)
		r.Post("/save-dialog/save", h.Save)
		r.Post("/delete-dialog/hide", h.HideDeleteDialog)
		r.Post("/delete-dialog/confirm", h.ConfirmDelete)
		r.Post("/reset", h.Reset)
	})
	r.Get("/healthz", h.Live)
	r.Get("/readyz", h.Ready)
}

// sessionMiddleware makes sure the caller has a screen session id and puts it
// in the request context.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if c, err := r.Cookie(h.session.CookieName); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				sessionID = id.String()
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     h.session.CookieName,
				Value:    sessionID,
				Path:     BasePath,
				HttpOnly: true,
				Secure:   h.session.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(web.WithSessionID(r.Context(), sessionID)))
	})
}

func (h *Handler) screen(r *http.Request) *screen.Screen {
	sessionID, _ := web.GetSessionID(r.Context())
	return h.registry.Get(r.Context(), sessionID)
}

// Show renders the caller's screen.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	st := h.screen(r).State()
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, st); err != nil {
		h.logger.ErrorContext(r.Context(), "Error rendering screen", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Error writing page", "error", err)
	}
}

// OpenCreate opens the save dialog on a blank draft.
func (h *Handler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	h.screen(r).OpenSaveModal(nil)
	h.redirect(w, r)
}

// OpenEdit opens the save dialog on the listed product with the path id.
func (h *Handler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	scr := h.screen(r)
	p, ok := h.listedProduct(w, r, scr)
	if !ok {
		return
	}
	scr.OpenSaveModal(&p)
	h.redirect(w, r)
}

// OpenDelete opens the delete confirmation for the listed product with the path id.
func (h *Handler) OpenDelete(w http.ResponseWriter, r *http.Request) {
	scr := h.screen(r)
	p, ok := h.listedProduct(w, r, scr)
	if !ok {
		return
	}
	scr.OpenDeleteModal(p)
	h.redirect(w, r)
}

func (h *Handler) HideSaveDialog(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dialog.Hide{From: dialog.SaveDialog})
}

func (h *Handler) HideDeleteDialog(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dialog.Hide{From: dialog.DeleteDialog})
}

// Save confirms the save dialog with the submitted form.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "Error parsing form", "error", err)
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	msg, err := dialog.DecodeSave(r.PostForm)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Malformed save form", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.dispatch(w, r, msg)
}

// ConfirmDelete confirms the delete dialog.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dialog.Delete{})
}

// Reset discards the caller's screen; the next view seeds a fresh one.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := web.GetSessionID(r.Context())
	h.registry.Discard(r.Context(), sessionID)
	h.redirect(w, r)
}

// dispatch hands a dialog message to the caller's screen. Rejected
// transitions leave the screen as it was and are only logged.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, msg dialog.Message) {
	if err := h.screen(r).Handle(r.Context(), msg); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, screen.ErrBusy) && !errors.Is(err, screen.ErrNoSelection) && !errors.Is(err, screen.ErrScreenFailed) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Screen transition rejected", "message", fmt.Sprintf("%T", msg), "error", err)
	}
	h.redirect(w, r)
}

// listedProduct resolves the path id against the products on the screen.
// It writes 400 for a malformed id and 404 for an id that is not listed.
func (h *Handler) listedProduct(w http.ResponseWriter, r *http.Request, scr *screen.Screen) (product.Product, bool) {
	raw := chi.URLParam(r, "id")
	id, ok := web.ParsePositiveID(raw)
	if !ok {
		h.logger.WarnContext(r.Context(), "Invalid product ID", "id", raw)
		http.Error(w, "Invalid ID: "+raw, http.StatusBadRequest)
		return product.Product{}, false
	}
	p, found := product.Find(scr.State().Products, id)
	if !found {
		http.Error(w, fmt.Sprintf("Product with ID %d not found", id), http.StatusNotFound)
		return product.Product{}, false
	}
	return p, true
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, BasePath, http.StatusSeeOther)
}

// Live checks if the service is live
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Ready checks if the service is ready (i.e., all dependencies are healthy)
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	eg, ctx := errgroup.WithContext(r.Context())
	for _, check := range h.checks {
		eg.Go(func() error {
			return check(ctx)
		})
	}
	if err := eg.Wait(); err != nil {
		h.logger.ErrorContext(r.Context(), "Readiness probe failed: upstream service is not ready", "error", err)
		http.Error(w, "Service Unavailable: Upstream service is not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CheckHealth returns a HealthCheck that expects a 2xx answer from url.
func CheckHealth(url string) HealthCheck {
	healthCheckClient := &http.Client{
		Timeout: 2 * time.Second,
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("invalid health check url %q: %w", url, err)
		}
		resp, err := healthCheckClient.Do(req)
		if err != nil {
			return fmt.Errorf("get request error, url=%v: %w", url, err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("response code: %d", resp.StatusCode)
		}
		return nil
	}
}
