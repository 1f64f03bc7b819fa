package testsupport

import (
	"path/filepath"
	"testing"

	"reelmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The fixture artifacts are written to disk and posters run in
// placeholder-only mode unless an option says otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Catalog, cfgVal.Paths.Similarity = WriteArtifacts(t, filepath.Join(base, "artifacts"))
	cfgVal.TMDB.APIKey = ""
	cfgVal.TMDB.ReadAccessToken = ""
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.RateLimitPerMinute = 0
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBToken sets the TMDB read access token and base URL on the test config.
func WithTMDBToken(token, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.ReadAccessToken = token
		if baseURL != "" {
			b.cfg.TMDB.BaseURL = baseURL
		}
	}
}

// WithPersistentPosters enables the SQLite poster store.
func WithPersistentPosters() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Poster.Persist = true
	}
}

// WithArtifacts overrides the catalog and similarity paths.
func WithArtifacts(catalogPath, matrixPath string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Catalog = catalogPath
		b.cfg.Paths.Similarity = matrixPath
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
