package service

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/config"
	"github.com/ankitson/clankerhub/internal/db"
	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/intel/openaiapi"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

// Runtime is a fully wired service with the resources it owns.
type Runtime struct {
	*Service
	Bus      *event.Bus
	Registry *skill.Registry
	DB       *sql.DB

	detach func()
}

// Open wires the database, journal, skill registry, provider and agent
// described by cfg.
func Open(cfg config.Config) (*Runtime, error) {
	dataDir := filepath.Dir(cfg.Store.Path)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	conn, err := db.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	provider, fallback, err := NewProvider(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	bus := event.NewBus()
	journal := event.NewJournal(conn)
	registry := NewRegistry(cfg.Skills.Dirs)
	ag := agent.New(provider, registry, bus, agent.Options{
		ProviderTimeout: cfg.Agent.ProviderTimeout,
		SkillTimeout:    cfg.Agent.SkillTimeout,
		Fallback:        fallback,
		MaxSubtasks:     cfg.Agent.MaxSubtasks,
		WorkDir:         workDir,
	})

	log.Debug().
		Str("provider", cfg.Agent.Provider).
		Str("store", cfg.Store.Path).
		Int("skills", len(registry.List())).
		Msg("runtime ready")

	return &Runtime{
		Service:  New(task.NewSQLStore(conn), ag, journal, dataDir),
		Bus:      bus,
		Registry: registry,
		DB:       conn,
		detach:   journal.Attach(bus),
	}, nil
}

// Close detaches the journal and closes the database.
func (r *Runtime) Close() error {
	if r.detach != nil {
		r.detach()
	}
	return r.DB.Close()
}

// NewProvider builds the configured provider and, when enabled, the
// template provider used if plan generation fails.
func NewProvider(cfg config.Config) (intel.Provider, intel.Provider, error) {
	switch cfg.Agent.Provider {
	case "", config.ProviderTemplate:
		return intel.NewTemplateProvider(cfg.Agent.ThinkingDelay), nil, nil
	case config.ProviderOpenAI:
		client, err := openaiapi.NewClient(openaiapi.Config{
			Model:     cfg.OpenAI.Model,
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Timeout:   cfg.OpenAI.Timeout,
		}, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("create openai client: %w", err)
		}
		var fallback intel.Provider
		if cfg.Agent.FallbackToTemplate {
			fallback = intel.NewTemplateProvider(0)
		}
		return intel.NewOpenAIProvider(client), fallback, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Agent.Provider)
	}
}

// NewRegistry registers the built-in skills followed by every directory in
// dirs. Directories that fail to load are skipped with a warning.
func NewRegistry(dirs []string) *skill.Registry {
	registry := skill.NewRegistry()
	registry.RegisterDirectory(skill.BuiltinDirectory())
	catalog := skill.BuiltinCatalog()
	for _, dir := range dirs {
		d, err := skill.LoadDirectory(dir, catalog)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("skip skill directory")
			continue
		}
		registry.RegisterDirectory(d)
	}
	return registry
}
