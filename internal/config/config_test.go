package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}
	if cfg.DecayHalfLifeHours != 168 {
		t.Errorf("DecayHalfLifeHours = %d, want 168", cfg.DecayHalfLifeHours)
	}
	if cfg.WeightSimilarity != 2.0 {
		t.Errorf("WeightSimilarity = %v, want 2.0", cfg.WeightSimilarity)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Should return defaults
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30 (default)", cfg.RetentionDays)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := `{"retention_days": 90, "embed_endpoint": "http://localhost:11434"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
	if cfg.EmbedEndpoint != "http://localhost:11434" {
		t.Errorf("EmbedEndpoint = %q, want %q", cfg.EmbedEndpoint, "http://localhost:11434")
	}
	// Unset fields fall back to defaults
	if cfg.DecayHalfLifeHours != 168 {
		t.Errorf("DecayHalfLifeHours = %d, want 168 (default)", cfg.DecayHalfLifeHours)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge_ScalarOverlay(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{RetentionDays: 7, WeightSimilarity: 3.5}

	merged := Merge(base, overlay)

	if merged.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7 (overlay)", merged.RetentionDays)
	}
	if merged.WeightSimilarity != 3.5 {
		t.Errorf("WeightSimilarity = %v, want 3.5 (overlay)", merged.WeightSimilarity)
	}
	// Zero-valued overlay fields keep base values
	if merged.DecayHalfLifeHours != 168 {
		t.Errorf("DecayHalfLifeHours = %d, want 168 (base)", merged.DecayHalfLifeHours)
	}
	if merged.WeightFrequency != 1.0 {
		t.Errorf("WeightFrequency = %v, want 1.0 (base)", merged.WeightFrequency)
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"insight_purge", "context_list"}}
	overlay := &Config{DisabledTools: []string{"context_list", "editor_document_changed"}}

	merged := Merge(base, overlay)

	want := []string{"insight_purge", "context_list", "editor_document_changed"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, s := range want {
		if merged.DisabledTools[i] != s {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], s)
		}
	}
}

func TestLoadWithRepo_RepoOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalContent := `{"retention_days": 60, "embed_model": "nomic-embed-text"}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalContent), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	repoConfigDir := filepath.Join(repoRoot, ".tacit")
	if err := os.MkdirAll(repoConfigDir, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	repoContent := `{"retention_days": 14}`
	if err := os.WriteFile(filepath.Join(repoConfigDir, "config.json"), []byte(repoContent), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Start the walk from a nested directory
	nested := filepath.Join(repoRoot, "src", "deep")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}

	if cfg.RetentionDays != 14 {
		t.Errorf("RetentionDays = %d, want 14 (repo wins)", cfg.RetentionDays)
	}
	if cfg.EmbedModel != "nomic-embed-text" {
		t.Errorf("EmbedModel = %q, want %q (global)", cfg.EmbedModel, "nomic-embed-text")
	}
	if cfg.DecayHalfLifeHours != 168 {
		t.Errorf("DecayHalfLifeHours = %d, want 168 (default)", cfg.DecayHalfLifeHours)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	if got := FindRepoConfig(tmpDir); got != "" {
		t.Errorf("FindRepoConfig = %q, want empty", got)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledTypes = []string{"insight"}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.RetentionDays != cfg.RetentionDays {
		t.Errorf("RetentionDays = %d, want %d", decoded.RetentionDays, cfg.RetentionDays)
	}
	if len(decoded.DisabledTypes) != 1 || decoded.DisabledTypes[0] != "insight" {
		t.Errorf("DisabledTypes = %v, want [insight]", decoded.DisabledTypes)
	}
}
