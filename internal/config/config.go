package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// RetentionDays is how long feedback records are kept before purge
	// removes them. Purge is always explicit; this is only its default.
	RetentionDays int `json:"retention_days"`

	// DecayHalfLifeHours is the half-life for the recency component of
	// relevance scoring. Interactions older than several half-lives
	// contribute almost nothing.
	DecayHalfLifeHours int `json:"decay_half_life_hours"`

	// WeightFrequency scales the stroke/visit frequency signal in ranking.
	WeightFrequency float64 `json:"weight_frequency,omitempty"`

	// WeightRecency scales the recency signal in ranking.
	WeightRecency float64 `json:"weight_recency,omitempty"`

	// WeightDwell scales the accumulated session-time signal in ranking.
	WeightDwell float64 `json:"weight_dwell,omitempty"`

	// WeightSimilarity scales the semantic similarity signal in ranking.
	WeightSimilarity float64 `json:"weight_similarity,omitempty"`

	// EmbedEndpoint is the base URL of the local embedding server.
	// Empty means use the deterministic built-in embedder.
	EmbedEndpoint string `json:"embed_endpoint,omitempty"`

	// EmbedModel is the embedding model name requested from the server.
	EmbedModel string `json:"embed_model,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool families to disable entirely.
	// Known types: "editor", "completion", "context", "insight".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:      30,
		DecayHalfLifeHours: 168, // 7 days
		WeightFrequency:    1.0,
		WeightRecency:      1.0,
		WeightDwell:        0.5,
		WeightSimilarity:   2.0,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tacit.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.tacit) and repo
// (.tacit) directories. Repo config is found by walking upward from startDir
// to find the nearest .tacit/config.json. Repo config takes precedence for
// scalar values; arrays are merged (deduplicated). Either or both configs may
// be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tacit/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tacit", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.RetentionDays = overlay.RetentionDays
	if result.RetentionDays == 0 {
		result.RetentionDays = base.RetentionDays
	}

	result.DecayHalfLifeHours = overlay.DecayHalfLifeHours
	if result.DecayHalfLifeHours == 0 {
		result.DecayHalfLifeHours = base.DecayHalfLifeHours
	}

	result.WeightFrequency = overlayFloat(base.WeightFrequency, overlay.WeightFrequency)
	result.WeightRecency = overlayFloat(base.WeightRecency, overlay.WeightRecency)
	result.WeightDwell = overlayFloat(base.WeightDwell, overlay.WeightDwell)
	result.WeightSimilarity = overlayFloat(base.WeightSimilarity, overlay.WeightSimilarity)

	result.EmbedEndpoint = overlay.EmbedEndpoint
	if result.EmbedEndpoint == "" {
		result.EmbedEndpoint = base.EmbedEndpoint
	}

	result.EmbedModel = overlay.EmbedModel
	if result.EmbedModel == "" {
		result.EmbedModel = base.EmbedModel
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// overlayFloat returns the overlay value if non-zero, else the base value.
func overlayFloat(base, overlay float64) float64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
