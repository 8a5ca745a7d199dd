package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// NewMux returns the raw mux so main() can still attach extra routes.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Gateway: d.Gateway, Version: d.Version}.Health,
	}))

	// Jobs
	jh := JobsHandler{Gateway: d.Gateway, Hub: d.Hub}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Summary,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: jh.DeleteByPath, // expects /jobs/{id}
	}))

	// Tiers and companies
	th := TiersHandler{Gateway: d.Gateway, Hub: d.Hub}
	mux.HandleFunc("/tiers", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.All,
	}))
	mux.HandleFunc("/tiers/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Get,
	}))
	coh := CompaniesHandler{Gateway: d.Gateway, Hub: d.Hub}
	mux.HandleFunc("/companies", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: coh.List,
	}))
	mux.HandleFunc("/companies/", coh.ByPath)

	// Data administration
	dh := DataHandler{Gateway: d.Gateway, Hub: d.Hub, SeedDir: d.SeedDir}
	mux.HandleFunc("/data/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Stats,
	}))
	mux.HandleFunc("/data/seed", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Seed,
	}))
	mux.HandleFunc("/data/clear", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Clear,
	}))
	mux.HandleFunc("/data/cleanup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Cleanup,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/redis", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetRedisPassword,
		http.MethodDelete: sh.DeleteRedisPassword,
	}))

	// Scrape
	sch := ScrapeHandler{Runner: d.Runner, Log: d.Log, BaseCtx: d.BaseCtx}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	return mux
}

// Handler wraps h with the standard middleware stack.
func Handler(h http.Handler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return Chain(h,
		RequestID,
		Recover(log),
		AccessLog(log),
		Cors,
	)
}
