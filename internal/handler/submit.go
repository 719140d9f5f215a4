package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/store"
)

// statementsField is the only multipart field attachments are accepted
// under. Files sent under any other field name are ignored.
const statementsField = "statements"

type leadAppender interface {
	Append(lead model.Lead) (model.Lead, error)
}

// Notifier delivers a submission summary out of band. Implementations must
// not block the request; failures stay internal.
type Notifier interface {
	NotifyLead(lead model.Lead) error
}

// SubmitHandler accepts lead submissions with optional attachments.
type SubmitHandler struct {
	BaseHandler
	leads    leadAppender
	uploads  *store.UploadStore
	notifier Notifier // nil when notifications are not configured

	maxFiles     int
	maxFileBytes int64
}

func NewSubmitHandler(logger *slog.Logger, leads leadAppender, uploads *store.UploadStore, notifier Notifier, maxFiles, maxFileSizeMB int) *SubmitHandler {
	return &SubmitHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		leads:        leads,
		uploads:      uploads,
		notifier:     notifier,
		maxFiles:     maxFiles,
		maxFileBytes: int64(maxFileSizeMB) << 20,
	}
}

// Submit processes a multipart lead submission.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Whole-body cap: every allowed file at the per-file limit, plus 1MB
	// of headroom for the text fields.
	maxBody := int64(h.maxFiles)*h.maxFileBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(maxBody); err != nil {
		h.Logger.Warn("submit: form parse failed", "err", err)
		h.failResponse(w, r, http.StatusBadRequest, "form too large or invalid")
		return
	}
	defer r.MultipartForm.RemoveAll()

	lead := extractLead(r)

	metas, err := h.uploads.SaveAll(r.MultipartForm.File[statementsField], h.maxFiles, h.maxFileBytes)
	if err != nil {
		if errors.Is(err, store.ErrTooManyFiles) || errors.Is(err, store.ErrFileTooLarge) {
			h.Logger.Warn("submit: rejected", "err", err)
			h.failResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.serverErrorResponse(w, r, err)
		return
	}
	lead.Files = metas

	saved, err := h.leads.Append(lead)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.Logger.Info("submit: lead stored", "id", saved.ID, "files", len(saved.Files))

	if h.notifier != nil {
		if err := h.notifier.NotifyLead(saved); err != nil {
			// Notification is best-effort; the submitter never sees this.
			h.Logger.Warn("submit: notification not queued", "id", saved.ID, "err", err)
		}
	}

	if err := h.writeJSON(w, http.StatusCreated, envelope{"ok": true, "id": saved.ID}, nil); err != nil {
		h.logError(r, err)
	}
}

// extractLead maps the known form fields; missing ones default to "" and
// unknown fields are dropped.
func extractLead(r *http.Request) model.Lead {
	return model.Lead{
		Company:     r.FormValue("company"),
		ContactName: r.FormValue("contactName"),
		Phone:       r.FormValue("phone"),
		Email:       r.FormValue("email"),
		Amount:      r.FormValue("amount"),
		Sector:      r.FormValue("sector"),
		Message:     r.FormValue("message"),
	}
}
