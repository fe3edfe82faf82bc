// Package agents stores and loads agent strategy configurations.
package agents

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
)

// Agent is one stored strategy with its enablement flag.
type Agent struct {
	Config  domain.AgentConfig `json:"config"`
	Enabled bool               `json:"enabled"`
}

// Repository handles agent configurations in agents.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new agent repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "agents").Logger(),
	}
}

// Get returns one agent by name, or nil when unknown.
func (r *Repository) Get(name string) (*Agent, error) {
	var configJSON string
	var enabled int
	err := r.db.QueryRow(
		`SELECT config, enabled FROM agents WHERE name = ?`, name,
	).Scan(&configJSON, &enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query agent %s: %w", name, err)
	}

	agent := &Agent{Enabled: enabled != 0}
	if err := json.Unmarshal([]byte(configJSON), &agent.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config for agent %s: %w", name, err)
	}
	return agent, nil
}

// List returns all stored agents ordered by name.
func (r *Repository) List() ([]Agent, error) {
	rows, err := r.db.Query(`SELECT name, config, enabled FROM agents ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var name, configJSON string
		var enabled int
		if err := rows.Scan(&name, &configJSON, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}

		agent := Agent{Enabled: enabled != 0}
		if err := json.Unmarshal([]byte(configJSON), &agent.Config); err != nil {
			return nil, fmt.Errorf("failed to decode config for agent %s: %w", name, err)
		}
		agent.Config.Name = name
		out = append(out, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}
	return out, nil
}

// Upsert writes one agent configuration.
func (r *Repository) Upsert(cfg domain.AgentConfig, enabled bool) error {
	if cfg.Name == "" {
		return fmt.Errorf("agent name is required")
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config for agent %s: %w", cfg.Name, err)
	}

	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err = r.db.Exec(
		`INSERT INTO agents (name, config, enabled, updated_at)
		 VALUES (?, ?, ?, datetime('now'))
		 ON CONFLICT(name) DO UPDATE SET
		   config = excluded.config,
		   enabled = excluded.enabled,
		   updated_at = excluded.updated_at`,
		cfg.Name, string(configJSON), enabledInt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert agent %s: %w", cfg.Name, err)
	}
	return nil
}

// Delete removes one agent.
func (r *Repository) Delete(name string) error {
	if _, err := r.db.Exec(`DELETE FROM agents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete agent %s: %w", name, err)
	}
	return nil
}
