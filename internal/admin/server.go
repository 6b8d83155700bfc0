package admin

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"engageops-sim/internal/curve"
	"engageops-sim/internal/engine"
	"engageops-sim/internal/profile"
	"engageops-sim/internal/registry"
	"engageops-sim/internal/store"
)

// Server exposes the simulation engine over HTTP for operators and the
// terminal dashboard.
type Server struct {
	Engine   *engine.Engine
	Profiles *profile.Set
	tpl      *template.Template
	mux      *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

func NewServer(eng *engine.Engine, profiles *profile.Set) *Server {
	if profiles == nil {
		profiles = profile.Builtin()
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Engine: eng, Profiles: profiles, tpl: tpl}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/simulations", s.handleSimulations)
	s.mux.HandleFunc("/stop-simulation", s.handleStop)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/run-pass", s.handleRunPass)
	s.mux.HandleFunc("/last-pass", s.handleLastPass)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
}

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// Handler returns the server's routing mux.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Simulations []registry.Status
		Profiles    []string
	}{
		Simulations: s.Engine.ListActive(),
		Profiles:    s.Profiles.Names(),
	}
	s.tpl.Execute(w, data)
}

// startRequest is the POST /simulations payload. Either a profile name or
// the full growth parameters must be supplied; explicit fields override
// profile values.
type startRequest struct {
	TargetID      string  `json:"target_id"`
	Profile       string  `json:"profile,omitempty"`
	MaxViews      int64   `json:"max_views,omitempty"`
	MaxLikes      int64   `json:"max_likes,omitempty"`
	LikeRatio     float64 `json:"like_ratio,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Curve         string  `json:"curve,omitempty"`
}

func (s *Server) handleSimulations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Engine.ListActive())
	case http.MethodPost:
		s.handleStart(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var sim registry.Simulation
	if req.Profile != "" {
		p, ok := s.Profiles.Get(req.Profile)
		if !ok {
			http.Error(w, "unknown profile: "+req.Profile, http.StatusBadRequest)
			return
		}
		sim = p.Simulation(req.TargetID, req.MaxViews, req.MaxLikes)
		if req.LikeRatio > 0 {
			sim.LikeRatio = req.LikeRatio
		}
		if req.DurationHours > 0 {
			sim.DurationHours = req.DurationHours
		}
		if req.Curve != "" {
			sim.Curve = curve.Shape(req.Curve)
		}
	} else {
		sim = registry.Simulation{
			TargetID:      req.TargetID,
			MaxViews:      req.MaxViews,
			MaxLikes:      req.MaxLikes,
			LikeRatio:     req.LikeRatio,
			DurationHours: req.DurationHours,
			Curve:         curve.Shape(req.Curve),
		}
	}

	started, err := s.Engine.StartSimulation(r.Context(), sim)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidGrowthParams), errors.Is(err, curve.ErrNonPositiveInitial):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "target content not found: "+sim.TargetID, http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(started)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "missing target parameter", http.StatusBadRequest)
		return
	}
	if !s.Engine.StopSimulation(target) {
		http.Error(w, "no active simulation for "+target, http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"stopped": target})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "missing target parameter", http.StatusBadRequest)
		return
	}
	status, ok := s.Engine.GetStatus(target)
	if !ok {
		http.Error(w, "no active simulation for "+target, http.StatusNotFound)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleRunPass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.Engine.RunUpdatePass(r.Context()))
}

func (s *Server) handleLastPass(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.LastPass())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
