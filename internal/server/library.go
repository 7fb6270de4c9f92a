package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/errors"
	"github.com/matzehuels/brickyard/pkg/library"
)

func (s *Server) requireLibrary(w http.ResponseWriter, r *http.Request) bool {
	if s.library != nil {
		return true
	}
	s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no build library configured"))
	return false
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	if !s.requireLibrary(w, r) {
		return
	}
	infos, err := s.library.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []library.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleLibrarySave(w http.ResponseWriter, r *http.Request) {
	if !s.requireLibrary(w, r) {
		return
	}
	var pieces build.Pieces
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		pieces = c.Pieces()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.library.Put(r.Context(), chi.URLParam(r, "name"), pieces)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("build saved", "name", entry.Name, "pieces", len(entry.Pieces))
	writeJSON(w, http.StatusOK, entry.Info())
}

func (s *Server) handleLibraryLoad(w http.ResponseWriter, r *http.Request) {
	if !s.requireLibrary(w, r) {
		return
	}
	name := chi.URLParam(r, "name")
	entry, err := s.library.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entry == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeBuildNotFound, "build %q not found", name))
		return
	}
	s.replace(w, r, entry.Pieces)
}

func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireLibrary(w, r) {
		return
	}
	if err := s.library.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
