package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/schema"
)

// adminLockTTL bounds how long a crashed replica can hold a unit toggle.
const adminLockTTL = 5 * time.Second

// mountAdmin registers the /api management surface. Each group appears only
// when its backend was configured, so a bare evaluation server exposes no
// mutation endpoints at all.
func (s *Server) mountAdmin(r chi.Router) {
	if s.content == nil && s.units == nil && s.aliases == nil && s.vars == nil {
		return
	}
	r.Route("/api", func(r chi.Router) {
		if s.content != nil {
			r.Get("/content", s.ListContent)
			r.Put("/content", s.PutContent)
			r.Get("/content/{id}", s.GetContent)
		}
		if s.units != nil {
			r.Get("/units", s.ListUnits)
			r.Get("/units/{name}", s.GetUnit)
			r.Put("/units/{name}", s.PutUnit)
			r.Delete("/units/{name}", s.DeleteUnit)
			r.Post("/units/{name}/enable", s.EnableUnit)
			r.Post("/units/{name}/disable", s.DisableUnit)
		}
		if s.aliases != nil {
			r.Get("/aliases", s.ListAliases)
			r.Put("/aliases/{name}", s.PutAlias)
			r.Delete("/aliases/{name}", s.DeleteAlias)
		}
		if s.vars != nil {
			r.Get("/variables", s.ListVariables)
			r.Put("/variables/{name}", s.PutVariable)
			r.Delete("/variables/{name}", s.DeleteVariable)
		}
	})
}

// PutContent handles PUT /api/content: the body is stored as-is and the
// response carries the derived content identifier.
func (s *Server) PutContent(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Reading request body failed", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Empty body", http.StatusBadRequest)
		return
	}

	id, err := s.content.Put(r.Context(), data)
	if err != nil {
		s.logger.Error("content store put failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("content stored", "id", id, "bytes", len(data))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"id": string(id)}); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// GetContent handles GET /api/content/{id}. The payload is re-verified
// against its identifier on the way out.
func (s *Server) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := cas.Normalize(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.content.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("content resolve failed", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// ListContent handles GET /api/content.
func (s *Server) ListContent(w http.ResponseWriter, r *http.Request) {
	ids, err := s.content.List(r.Context())
	if err != nil {
		s.logger.Error("content list failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, ids)
}

// ListUnits handles GET /api/units, including disabled units.
func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	names, err := s.units.Names(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	units := make([]domain.Unit, 0, len(names))
	for _, name := range names {
		u, err := s.units.Lookup(r.Context(), name)
		if err != nil {
			// Deleted between Names and Lookup; a listing just moves on.
			continue
		}
		units = append(units, u)
	}
	s.writeJSON(w, units)
}

// GetUnit handles GET /api/units/{name}.
func (s *Server) GetUnit(w http.ResponseWriter, r *http.Request) {
	u, err := s.units.Lookup(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.writeJSON(w, u)
}

// PutUnit handles PUT /api/units/{name}: create or replace a unit. The URL
// name wins over any name in the body.
func (s *Server) PutUnit(w http.ResponseWriter, r *http.Request) {
	var u domain.Unit
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	u.Name = chi.URLParam(r, "name")
	if u.Language == domain.LangNone {
		u.Language = domain.DefaultLanguage
	}
	if err := schema.ValidateUnit(u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.units.Save(r.Context(), u); err != nil {
		s.logger.Error("unit save failed", "unit", u.Name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("unit saved", "unit", u.Name, "language", u.Language)
	s.writeJSON(w, u)
}

// DeleteUnit handles DELETE /api/units/{name}.
func (s *Server) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.units.Delete(r.Context(), name); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("unit deleted", "unit", name)
	w.WriteHeader(http.StatusNoContent)
}

// EnableUnit handles POST /api/units/{name}/enable.
func (s *Server) EnableUnit(w http.ResponseWriter, r *http.Request) {
	s.setUnitEnabled(w, r, true)
}

// DisableUnit handles POST /api/units/{name}/disable.
func (s *Server) DisableUnit(w http.ResponseWriter, r *http.Request) {
	s.setUnitEnabled(w, r, false)
}

// setUnitEnabled toggles a unit under the distributed lock when one is
// configured, so concurrent toggles against a shared backend cannot
// interleave their read-modify-write.
func (s *Server) setUnitEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	name := chi.URLParam(r, "name")

	if s.locker != nil {
		unlock, err := s.locker.Lock(r.Context(), "unit:"+name, adminLockTTL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer func() {
			// Unlock on a fresh context: the client may be gone by now.
			if err := unlock(context.Background()); err != nil {
				s.logger.Warn("unlock failed", "unit", name, "error", err)
			}
		}()
	}

	u, err := s.units.Lookup(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	u.Enabled = enabled
	if err := s.units.Save(r.Context(), u); err != nil {
		s.logger.Error("unit toggle failed", "unit", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("unit toggled", "unit", name, "enabled", enabled)
	s.writeJSON(w, u)
}

// ListAliases handles GET /api/aliases. The response mirrors aliases.yaml:
// a name-to-target map.
func (s *Server) ListAliases(w http.ResponseWriter, r *http.Request) {
	names, err := s.aliases.Names(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		target, err := s.aliases.Lookup(r.Context(), name)
		if err != nil {
			continue
		}
		out[name] = target
	}
	s.writeJSON(w, out)
}

// PutAlias handles PUT /api/aliases/{name}.
func (s *Server) PutAlias(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	a := domain.Alias{Name: chi.URLParam(r, "name"), Target: body.Target}
	if err := schema.ValidateAlias(a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.aliases.Save(r.Context(), a); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, a)
}

// DeleteAlias handles DELETE /api/aliases/{name}.
func (s *Server) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := s.aliases.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVariables handles GET /api/variables, mirroring vars.yaml.
func (s *Server) ListVariables(w http.ResponseWriter, r *http.Request) {
	names, err := s.vars.Names(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		value, err := s.vars.Lookup(r.Context(), name)
		if err != nil {
			continue
		}
		out[name] = value
	}
	s.writeJSON(w, out)
}

// PutVariable handles PUT /api/variables/{name}.
func (s *Server) PutVariable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	v := domain.Variable{Name: chi.URLParam(r, "name"), Value: body.Value}
	if err := schema.ValidateVariable(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.vars.Save(r.Context(), v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, v)
}

// DeleteVariable handles DELETE /api/variables/{name}.
func (s *Server) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	if err := s.vars.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
