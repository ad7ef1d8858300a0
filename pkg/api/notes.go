package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/haekelise/hausmeister/pkg/notes"
)

type noteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAppendNote(w http.ResponseWriter, req *http.Request) {
	notebook := mux.Vars(req)["notebook"]

	note := noteRequest{}
	if err := json.NewDecoder(req.Body).Decode(&note); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(note.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	if err := s.notes.Append(notebook, note.Text); err != nil {
		if errors.Is(err, notes.ErrInvalidNotebookName) {
			writeError(w, http.StatusBadRequest, "invalid notebook name")
			return
		}
		log.WithError(err).Error("failed to append note")
		writeError(w, http.StatusInternalServerError, "failed to store note")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"notebook": notebook})
	s.triggerBackup("POST /notes/" + notebook)
}

func (s *Server) handleListNotebooks(w http.ResponseWriter, _ *http.Request) {
	notebooks, err := s.notes.Notebooks()
	if err != nil {
		log.WithError(err).Error("failed to list notebooks")
		writeError(w, http.StatusInternalServerError, "failed to list notebooks")
		return
	}
	writeJSON(w, http.StatusOK, notebooks)
}

func (s *Server) handleReadNotebook(w http.ResponseWriter, req *http.Request) {
	notebook := mux.Vars(req)["notebook"]

	content, err := s.notes.Read(notebook)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidNotebookName) {
			writeError(w, http.StatusBadRequest, "invalid notebook name")
			return
		}
		if os.IsNotExist(errors.Cause(err)) {
			writeError(w, http.StatusNotFound, "notebook not found")
			return
		}
		log.WithError(err).Error("failed to read notebook")
		writeError(w, http.StatusInternalServerError, "failed to read notebook")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}
