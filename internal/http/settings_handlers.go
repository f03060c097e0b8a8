package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/repository"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	settings, err := s.store.GetSystemSettings(r.Context())
	if err != nil {
		s.logger.Error("settings lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
		"isAdmin":  s.isAdmin(user),
	})
}

type systemSettingsUpdate struct {
	MaintenanceMode      bool   `json:"maintenanceMode"`
	RegistrationDisabled bool   `json:"registrationDisabled"`
	SystemNotice         string `json:"systemNotice"`
}

type profileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateSettingsRequest struct {
	SystemSettings *systemSettingsUpdate `json:"systemSettings,omitempty"`
	Profile        *profileUpdate        `json:"profile,omitempty"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if req.SystemSettings != nil {
		if !s.isAdmin(user) {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		settings := model.SystemSettings{
			MaintenanceMode:      req.SystemSettings.MaintenanceMode,
			RegistrationDisabled: req.SystemSettings.RegistrationDisabled,
			SystemNotice:         req.SystemSettings.SystemNotice,
			UpdatedAt:            time.Now().UTC(),
			UpdatedBy:            user.ID,
		}
		if err := s.store.UpsertSystemSettings(r.Context(), settings); err != nil {
			s.logger.Error("settings update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "settings": settings})
		return
	}

	if req.Profile != nil {
		name := strings.TrimSpace(req.Profile.Name)
		email := strings.TrimSpace(strings.ToLower(req.Profile.Email))
		if name == "" || email == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if err := s.store.UpdateUserProfile(r.Context(), user.ID, name, email, time.Now().UTC()); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				writeError(w, http.StatusConflict, "email_taken")
				return
			}
			s.logger.Error("profile update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) isAdmin(user *model.User) bool {
	return user != nil && user.Email == s.cfg.AdminEmail
}
