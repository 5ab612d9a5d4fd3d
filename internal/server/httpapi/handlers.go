package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
	"github.com/dmitrijs2005/sigrelay/internal/server/auth"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", common.ErrorBadRequest, err)
	}
	return nil
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

// authenticate runs the handshake: the bearer credential is a signed
// assertion, not a session id.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req rpc.AuthenticateRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl, err := req.ParseTTL()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.sessions.Authenticate(r.Context(), token, ttl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rpc.NewSessionInfo(session))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, rpc.NewSessionInfo(session))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := s.events.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.EventList{Events: list})
}

func (s *Server) publishEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decodeBody(w, r, &e, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	stored, err := s.events.Publish(r.Context(), session, &e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.events.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	if err := s.events.Delete(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.UserList{Users: list})
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := decodeBody(w, r, &u, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	stored, err := s.users.Register(r.Context(), session, models.NewUser(u.Name, u.PublicKey))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
