package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
)

type leadLister interface {
	All() ([]model.Lead, error)
}

// AdminHandler exposes read-only views over the lead store. Both endpoints
// sit behind Basic Auth; neither has side effects.
type AdminHandler struct {
	BaseHandler
	leads     leadLister
	templates *template.Template
}

func NewAdminHandler(logger *slog.Logger, leads leadLister, tmpl *template.Template) *AdminHandler {
	return &AdminHandler{BaseHandler: BaseHandler{Logger: logger}, leads: leads, templates: tmpl}
}

type fileRow struct {
	URL  string
	Name string
	Size string
}

type leadRow struct {
	model.Lead
	Received string
	Files    []fileRow
}

type adminPageData struct {
	Total int
	Leads []leadRow
}

// Page renders the HTML table of all leads, newest first.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.All()
	if err != nil {
		h.logError(r, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := adminPageData{Total: len(leads), Leads: make([]leadRow, 0, len(leads))}
	for _, lead := range leads {
		row := leadRow{Lead: lead, Received: humanize.Time(lead.ReceivedAt)}
		for _, f := range lead.Files {
			row.Files = append(row.Files, fileRow{
				URL:  f.URL(),
				Name: f.OriginalName,
				Size: humanize.IBytes(uint64(f.Size)),
			})
		}
		data.Leads = append(data.Leads, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "admin_leads.html", data); err != nil {
		h.logError(r, err)
	}
}

// List returns all leads as JSON, newest first.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.All()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}

	env := envelope{"ok": true, "total": len(leads), "leads": leads}
	if err := h.writeJSON(w, http.StatusOK, env, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
