package server

import (
	"encoding/json"
	"net/http"
)

const jsonContentType = "application/json; charset=utf-8"

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"message": message})
}

func (s *Service) respondFieldErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "Validation failed",
		"errors":  fieldErrors,
	})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
