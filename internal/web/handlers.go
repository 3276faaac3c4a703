package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/errors"
	"github.com/tacit-sh/tacit/internal/ops"
	"github.com/tacit-sh/tacit/internal/rank"
)

// Handlers contains HTTP route handlers for the web UI. The dashboard is
// read-mostly: it shows recorded data and offers purge and per-path delete
// as the only mutations.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	ranker   *rank.Ranker
	renderer *Renderer
}

// HandleStats handles GET /stats — acceptance and activity per path.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(h.db, ops.StatsInput{
		Limit: parseIntParam(r, "limit", 20),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "stats", StatsPageData{
		PageData: PageData{
			Title:   "Stats",
			Version: h.renderer.version,
			Nav:     "stats",
		},
		Stats: result,
	})
}

// HandleFeedback handles GET /feedback — the recorded feedback log.
func (h *Handlers) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	result, err := ops.FeedbackList(h.db, ops.FeedbackListInput{
		Path:   path,
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "feedback", FeedbackPageData{
		PageData: PageData{
			Title:   "Feedback",
			Version: h.renderer.version,
			Nav:     "feedback",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Path:       path,
	})
}

// HandleReport handles GET /report — the rendered markdown report.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Report(h.db, h.ranker, ops.ReportInput{
		Limit: parseIntParam(r, "limit", 20),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "report", ReportPageData{
		PageData: PageData{
			Title:   "Report",
			Version: h.renderer.version,
			Nav:     "report",
		},
		RenderedHTML: renderMarkdown(result.Markdown),
		GeneratedAt:  result.GeneratedAt,
	})
}

// HandleDelete handles POST /paths/delete — forget everything for a path.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	path := r.FormValue("path")
	if path == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("path is required"))
		return
	}

	result, err := ops.Delete(h.db, nil, ops.DeleteInput{Path: path})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/stats")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/stats", http.StatusFound)
}

// HandlePurge handles POST /purge — drop feedback past the retention window.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{}
	if days := r.FormValue("retention_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("retention_days must be an integer"))
			return
		}
		input.RetentionDays = d
	}

	result, err := ops.Purge(h.db, h.cfg, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">Removed ` +
			template.HTMLEscapeString(strconv.FormatInt(result.Removed, 10)) + ` records</div>`))
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/feedback", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
