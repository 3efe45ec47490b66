package main

import (
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"rrt-planner/planner"
)

// runSummary is the JSON view of a finished run
type runSummary struct {
	ID         string          `json:"id"`
	Status     planner.Status  `json:"status"`
	Seed       int64           `json:"seed"`
	Iterations int             `json:"iterations"`
	Collisions int             `json:"collisions"`
	NumNodes   int             `json:"numNodes"`
	Path       []planner.Point `json:"path"`
	PathLength float64         `json:"pathLength,omitempty"`
	Cached     bool            `json:"cached,omitempty"`
	Message    string          `json:"message,omitempty"`
}

func summarize(rec *runRecord, cached bool) runSummary {
	summary := runSummary{
		ID:         rec.ID,
		Status:     rec.Result.Status,
		Seed:       rec.Config.Seed,
		Iterations: rec.Result.Iterations,
		Collisions: rec.Result.Collisions,
		NumNodes:   len(rec.Result.Nodes),
		Path:       rec.Result.Path,
		PathLength: planner.PathLength(rec.Result.Path),
		Cached:     cached,
	}
	if summary.Path == nil {
		summary.Path = []planner.Point{}
	}
	if rec.Result.Status == planner.StatusBudgetExhausted {
		summary.Message = "No path found within the iteration budget"
	}
	return summary
}

type server struct {
	cfg    ServerConfig
	logger *zap.Logger
	runs   *runStore
}

func newServer(cfg ServerConfig, logger *zap.Logger) *server {
	return &server{
		cfg:    cfg,
		logger: logger,
		runs:   newRunStore(cfg.MaxRuns),
	}
}

// baseConfig returns a copy of the default planner config that request
// bodies are decoded over.
func (s *server) baseConfig() planner.Config {
	cfg := s.cfg.Planner
	cfg.Obstacles = slices.Clone(cfg.Obstacles)
	return cfg
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/plan", corsMiddleware(s.planHandler))
	mux.HandleFunc("/planBatch", corsMiddleware(s.planBatchHandler))
	mux.HandleFunc("/getTreeLines", corsMiddleware(s.getTreeLinesHandler))
	mux.HandleFunc("/stream", s.streamHandler)
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /plan - grow a tree with the request's overrides of the default config
func (s *server) planHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.baseConfig()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.logger.Warn("invalid plan request body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if rec, ok := s.runs.Lookup(cfg); ok {
		s.logger.Info("serving cached run", zap.String("id", rec.ID))
		writeJSON(w, http.StatusOK, summarize(rec, true))
		return
	}

	p, err := planner.New(cfg, planner.WithLogger(s.logger))
	if err != nil {
		s.logger.Warn("rejected plan config", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := p.Run(r.Context())
	rec := s.runs.Put(p.Config(), res)
	if err != nil {
		s.logger.Warn("plan run failed", zap.String("id", rec.ID), zap.Error(err))
		summary := summarize(rec, false)
		summary.Message = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, summary)
		return
	}

	s.logger.Info("plan finished",
		zap.String("id", rec.ID),
		zap.String("status", string(res.Status)),
		zap.Int("nodes", len(res.Nodes)),
	)

	if s.cfg.ExportDir != "" {
		filename := filepath.Join(s.cfg.ExportDir, rec.ID+".geojson")
		if err := saveRunGeoJSON(rec, filename, s.logger); err != nil {
			s.logger.Warn("failed to save run", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, summarize(rec, false))
}

// POST /planBatch - run the same config under several seeds
func (s *server) planBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type BatchRequest struct {
		Config planner.Config `json:"config"`
		Seeds  []int64        `json:"seeds"`
	}

	req := BatchRequest{Config: s.baseConfig()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid batch request body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Seeds) == 0 || len(req.Seeds) > s.cfg.MaxBatchSeeds {
		http.Error(w, "seeds must hold between 1 and maxBatchSeeds entries", http.StatusBadRequest)
		return
	}
	if err := req.Config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("batch started", zap.Int("seeds", len(req.Seeds)))
	configs, results, err := runBatch(r.Context(), req.Config, req.Seeds, s.cfg.BatchParallelism, s.logger)
	if err != nil {
		s.logger.Warn("batch failed", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, planner.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	runs := make([]runSummary, len(results))
	for i := range results {
		runs[i] = summarize(s.runs.Put(configs[i], results[i]), false)
	}

	bestID := ""
	if best := shortestRun(results); best >= 0 {
		bestID = runs[best].ID
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": bestID != "",
		"runs":    runs,
		"bestId":  bestID,
	})
}

// GET /getTreeLines?id= - tree edges, path and obstacles of a run as GeoJSON
func (s *server) getTreeLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	rec, ok := s.runs.Get(id)
	if !ok {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, runFeatureCollection(rec))
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"runs":   s.runs.Len(),
	})
}

func main() {
	configPath := flag.String("config", "", "path to a YAML server config")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	flag.Parse()

	cfg := DefaultServerConfig()
	if *configPath != "" {
		loaded, err := LoadServerConfig(*configPath)
		if err != nil {
			zap.NewExample().Fatal("failed to load config", zap.Error(err))
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if cfg.ObstacleFile != "" {
		obstacles, err := loadObstacles(cfg.ObstacleFile, logger)
		if err != nil {
			logger.Fatal("failed to load obstacles", zap.Error(err))
		}
		cfg.Planner.Obstacles = obstacles
		if err := cfg.Validate(); err != nil {
			logger.Fatal("invalid config after loading obstacles", zap.Error(err))
		}
	}

	srv := newServer(cfg, logger)

	logger.Info("rrt planner server starting",
		zap.String("addr", cfg.Addr),
		zap.Float64("width", cfg.Planner.Bounds.Width),
		zap.Float64("height", cfg.Planner.Bounds.Height),
		zap.Int("obstacles", len(cfg.Planner.Obstacles)),
		zap.Strings("endpoints", []string{
			"POST /plan",
			"POST /planBatch",
			"GET  /getTreeLines",
			"GET  /stream",
			"GET  /health",
		}),
	)

	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
