package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/buildinfo"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/observability"
	"github.com/matzehuels/brickyard/pkg/raycast"
)

type pointerRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Leave bool    `json:"leave,omitempty"`
}

type gestureRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	OverUI bool    `json:"overUI,omitempty"`
}

type toolRequest struct {
	Type  catalog.Type  `json:"type,omitempty"`
	Color catalog.Color `json:"color,omitempty"`
}

type commitResponse struct {
	Committed bool         `json:"committed"`
	Piece     *build.Piece `json:"piece,omitempty"`
	Contact   string       `json:"contact,omitempty"`
}

type editResponse struct {
	Applied bool `json:"applied"`
	Count   int  `json:"count"`
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.loop.Frame())
}

func (s *Server) handlePieces(w http.ResponseWriter, r *http.Request) {
	var pieces build.Pieces
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		pieces = c.Pieces()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if pieces == nil {
		pieces = build.Pieces{}
	}
	writeJSON(w, http.StatusOK, pieces)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var err error
	if req.Leave {
		err = s.loop.Leave(r.Context())
	} else {
		err = s.loop.Point(r.Context(), raycast.NDC{X: req.X, Y: req.Y})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.loop.Frame())
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		c.Press(req.X, req.Y)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp commitResponse
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		cm, ok := c.Release(req.X, req.Y, req.OverUI)
		if ok {
			resp = commitResponse{Committed: true, Piece: &cm.Piece, Contact: cm.Contact.String()}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		c.Rotate()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.loop.Frame())
}

// edit runs a history operation and reports whether it changed the build.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, op func(*controller.Controller) bool) {
	var resp editResponse
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		resp.Applied = op(c)
		resp.Count = len(c.Live())
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, (*controller.Controller).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, (*controller.Controller).Redo)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, (*controller.Controller).Clear)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp editResponse
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		if !c.Remove(id) {
			return errors.New(errors.ErrCodePieceNotFound, "piece %q not found", id)
		}
		resp = editResponse{Applied: true, Count: len(c.Live())}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		if req.Type != "" {
			if err := c.SetActiveType(req.Type); err != nil {
				return err
			}
		}
		if req.Color != "" {
			return c.SetActiveColor(req.Color)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.loop.Frame())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var pieces build.Pieces
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		pieces = c.Pieces()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="build.json"`)
	if err := pkgio.WriteJSON(pieces, w); err != nil {
		s.logger.Warn("export failed", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	pieces, err := pkgio.ReadJSON(r.Body)
	if err != nil {
		observability.Engine().OnImport(0, err)
		s.writeError(w, r, err)
		return
	}
	s.replace(w, r, pieces)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request, pieces build.Pieces) {
	var resp editResponse
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		resp.Applied = c.Import(pieces)
		resp.Count = len(c.Live())
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
