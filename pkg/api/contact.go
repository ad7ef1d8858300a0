package api

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/haekelise/hausmeister/pkg/mail"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, req *http.Request) {
	form := contactRequest{}
	if err := json.NewDecoder(req.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(form.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	if !strings.Contains(form.Email, "@") {
		writeError(w, http.StatusBadRequest, "email address is invalid")
		return
	}
	if strings.TrimSpace(form.Message) == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	if s.mailer == nil {
		writeError(w, http.StatusServiceUnavailable, "contact form is not configured")
		return
	}

	err := s.mailer.Send(mail.Message{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
	})
	if err != nil {
		log.WithError(err).Error("failed to send contact mail")
		writeError(w, http.StatusBadGateway, "failed to send message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "sent"})
}
