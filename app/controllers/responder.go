package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"postboard/app/auth"
	"postboard/app/logger"
	"postboard/app/repositories"

	"go.uber.org/zap"
)

// Settings are the page sizes and limits shared by the controllers.
type Settings struct {
	PageSize       int
	DetailPageSize int
	MaxUploadBytes int64
}

// responder renders pages and error pages, as HTML or as JSON when the
// client asks for it.
type responder struct {
	renderer Renderer
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// withViewer adds the request's user to data for the layout.
func withViewer(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["user"]; !ok {
		data["user"] = auth.UserFromContext(r.Context())
	}
	return data
}

// renderBytes renders the named HTML page into memory.
func (rs *responder) renderBytes(r *http.Request, name string, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := rs.renderer.Render(&buf, name, withViewer(r, data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (rs *responder) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if wantsJSON(r) {
		rs.sendJSON(w, status, withViewer(r, data))
		return
	}
	page, err := rs.renderBytes(r, name, data)
	if err != nil {
		logger.FromContext(r.Context()).Error("Template error", zap.String("template", name), zap.Error(err))
		if name != "500" {
			rs.serverError(w, r, err)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, page)
}

func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page)
}

func (rs *responder) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (rs *responder) notFound(w http.ResponseWriter, r *http.Request) {
	rs.render(w, r, http.StatusNotFound, "404", map[string]any{"path": r.URL.Path})
}

func (rs *responder) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	rs.render(w, r, http.StatusInternalServerError, "500", map[string]any{})
}

// fail maps a lookup or service error onto the 404 or 500 page.
func (rs *responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		rs.notFound(w, r)
		return
	}
	rs.serverError(w, r, err)
}

// ErrorController serves the 404 and 500 pages outside any other handler.
type ErrorController struct {
	responder
}

// NewErrorController creates a new ErrorController
func NewErrorController(renderer Renderer) *ErrorController {
	return &ErrorController{responder{renderer: renderer}}
}

// NotFound renders the 404 page for unmatched routes.
func (ec *ErrorController) NotFound(w http.ResponseWriter, r *http.Request) {
	ec.notFound(w, r)
}

// ServerError renders the 500 page; used after a recovered panic.
func (ec *ErrorController) ServerError(w http.ResponseWriter, r *http.Request) {
	ec.render(w, r, http.StatusInternalServerError, "500", map[string]any{})
}

// MethodNotAllowed answers routes that exist under another method.
func (ec *ErrorController) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		ec.sendJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
