package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/csvimport"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/repository"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contacts, err := s.store.ListContacts(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("contact list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

type createContactRequest struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Company   model.Company `json:"company"`
	Status    string        `json:"status"`
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req createContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status == "" {
		req.Status = model.StatusNew
	}
	if !model.ValidContactStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	now := time.Now().UTC()
	contact := model.Contact{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Company:   req.Company,
		Status:    req.Status,
		Notes:     []model.Note{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateContact(r.Context(), contact); err != nil {
		s.logger.Error("contact create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	contact, err := s.store.GetContact(r.Context(), user.ID, contactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact_not_found")
			return
		}
		s.logger.Error("contact lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

type updateContactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	var req updateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := repository.ContactUpdate{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
	}
	matched, err := s.store.UpdateContactDetails(r.Context(), user.ID, contactID, update, time.Now().UTC())
	if err != nil {
		s.logger.Error("contact update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !matched {
		writeError(w, http.StatusNotFound, "contact_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing_status")
		return
	}
	if !model.ValidContactStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	matched, err := s.store.UpdateContactStatus(r.Context(), user.ID, contactID, req.Status, time.Now().UTC())
	if err != nil {
		s.logger.Error("status update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !matched {
		writeError(w, http.StatusNotFound, "contact_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": req.Status})
}

type addNoteRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content_required")
		return
	}

	now := time.Now().UTC()
	note := model.Note{
		ID:        uuid.NewString(),
		Content:   req.Content,
		CreatedAt: now,
		// Snapshot of the author; deliberately not a reference, so the
		// note keeps the name the user had when it was written.
		CreatedBy: model.NoteAuthor{ID: user.ID, Name: user.Name},
	}
	matched, err := s.store.AppendNote(r.Context(), user.ID, contactID, note, now)
	if err != nil {
		s.logger.Error("note append failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !matched {
		writeError(w, http.StatusNotFound, "contact_not_found")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type logCallRequest struct {
	Duration *int    `json:"duration,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Status   string  `json:"status"`
}

func (s *Server) handleLogCall(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	if _, err := s.store.GetContact(r.Context(), user.ID, contactID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact_not_found")
			return
		}
		s.logger.Error("contact lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	var req logCallRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status == "" {
		req.Status = model.CallCompleted
	}
	if !model.ValidCallStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	now := time.Now().UTC()
	callLog := model.CallLog{
		ID:        uuid.NewString(),
		ContactID: contactID,
		UserID:    user.ID,
		Timestamp: now,
		Duration:  req.Duration,
		Notes:     req.Notes,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCallLog(r.Context(), callLog); err != nil {
		s.logger.Error("call log create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Call logged successfully", "id": callLog.ID})
}

func (s *Server) handleListContactCalls(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		writeError(w, http.StatusBadRequest, "missing_contact_id")
		return
	}

	if _, err := s.store.GetContact(r.Context(), user.ID, contactID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact_not_found")
			return
		}
		s.logger.Error("contact lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	callLogs, err := s.store.ListCallLogsByContact(r.Context(), contactID)
	if err != nil {
		s.logger.Error("call log list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, callLogs)
}

func (s *Server) handleListUserCalls(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	callLogs, err := s.store.ListCallLogsByUser(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("call log list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, callLogs)
}

type bulkDeleteRequest struct {
	ContactIDs []string `json:"contactIds"`
}

func (s *Server) handleBulkDeleteContacts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if len(req.ContactIDs) == 0 {
		writeError(w, http.StatusBadRequest, "contact_ids_required")
		return
	}

	deleted, err := s.store.DeleteContacts(r.Context(), user.ID, req.ContactIDs)
	if err != nil {
		s.logger.Error("bulk delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deletedCount": deleted})
}

const maxImportMemory = 32 << 20

func (s *Server) handleImportContacts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := r.ParseMultipartForm(maxImportMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		writeError(w, http.StatusBadRequest, "file_must_be_csv")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("upload read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	count, err := s.importer.Import(r.Context(), user.ID, string(content))
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrTooFewRows):
			writeError(w, http.StatusBadRequest, "csv_too_few_rows")
		case errors.Is(err, csvimport.ErrMissingRequiredColumn):
			writeError(w, http.StatusBadRequest, "csv_missing_company_name")
		default:
			s.logger.Error("import failed", "error", err, "imported", count)
			writeError(w, http.StatusInternalServerError, "import_failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Imported %d contacts", count),
	})
}
