package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pinnaclepm/pkg/types"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := s.admins.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.WithError(err).Error("admin login failed")
		s.internalServerError(w)
		return
	}

	encoded, err := s.cookie.Encode(s.config.SessionCookieName, admin.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   s.config.SessionMaxAgeSec,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleAdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleAdminGetSettings(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.currentSettings(r.Context()))
}

// handleAdminPutSettings accepts a full or partial settings document. Absent
// fields keep their stored value; the merged document is written as the new
// latest row.
func (s *Service) handleAdminPutSettings(w http.ResponseWriter, r *http.Request) {
	var patch types.SettingsPatch
	if err := decodeJSONBody(r, &patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	merged := s.currentSettings(r.Context()).Apply(patch)

	if err := s.settings.SaveSettings(r.Context(), merged); err != nil {
		s.logger.WithError(err).Error("failed to save settings")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, merged)
}

const defaultApplicationsLimit = 50

// handleAdminListApplications returns recent submissions, newest first, so
// the operator can review them without digging through email.
func (s *Service) handleAdminListApplications(w http.ResponseWriter, r *http.Request) {
	limit := uint64(defaultApplicationsLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			s.respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	apps, err := s.applications.LatestApplications(r.Context(), limit)
	if err != nil {
		s.logger.WithError(err).Error("failed to list applications")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, apps)
}

func (s *Service) handleAdminGetApplication(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	app, err := s.applications.ApplicationByConfirmationCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, types.ErrApplicationNotFound) {
			s.respondError(w, http.StatusNotFound, "Application not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch application")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, app)
}

type updateCredentialsRequest struct {
	CurrentEmail    string `json:"currentEmail"`
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
	NewPassword     string `json:"newPassword"`
}

// handleAdminUpdateCredentials verifies the current email/password pair
// before replacing it. A blank new email keeps the current one.
func (s *Service) handleAdminUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateCredentialsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.NewPassword) == "" {
		s.respondError(w, http.StatusBadRequest, "New password is required")
		return
	}

	admin, err := s.admins.Authenticate(ctx, req.CurrentEmail, req.CurrentPassword)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			s.respondError(w, http.StatusBadRequest, "Current credentials are incorrect")
			return
		}
		s.logger.WithError(err).Error("failed to verify current credentials")
		s.internalServerError(w)
		return
	}

	if sessionAdminID, ok := s.adminIDFromContext(ctx); !ok || sessionAdminID != admin.ID {
		s.respondError(w, http.StatusBadRequest, "Current credentials are incorrect")
		return
	}

	newEmail := strings.TrimSpace(req.NewEmail)
	if newEmail == "" {
		newEmail = admin.Email
	}

	if err := s.admins.UpdateCredentials(ctx, admin.ID, newEmail, req.NewPassword); err != nil {
		s.logger.WithError(err).Error("failed to update admin credentials")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
