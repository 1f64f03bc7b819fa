package config

const (
	defaultConfigPath         = "~/.config/reelmatch/config.toml"
	defaultDataDir            = "~/.local/share/reelmatch"
	defaultLogDir             = "~/.local/share/reelmatch/logs"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL   = "https://image.tmdb.org/t/p/w500"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBTimeoutSeconds = 10
	defaultTMDBRequestsPerSec = 20
	defaultTMDBBurst          = 5
	defaultPosterCacheSize    = 200
	defaultPlaceholderURL     = "https://via.placeholder.com/300x450?text=No+Image"
	defaultPosterConcurrency  = 1
	defaultRecommendK         = 5
	defaultMatchPolicy        = MatchPolicyExactFirst
	defaultServerBind         = "127.0.0.1:7490"
	defaultRateLimitPerMinute = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Title match policies accepted by recommend.match_policy.
const (
	MatchPolicyExactFirst = "exact_first"
	MatchPolicyFirst      = "first"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			Language:          defaultTMDBLanguage,
			TimeoutSeconds:    defaultTMDBTimeoutSeconds,
			RequestsPerSecond: defaultTMDBRequestsPerSec,
			Burst:             defaultTMDBBurst,
		},
		Poster: Poster{
			Enabled:        true,
			CacheSize:      defaultPosterCacheSize,
			PlaceholderURL: defaultPlaceholderURL,
			Concurrency:    defaultPosterConcurrency,
		},
		Recommend: Recommend{
			DefaultK:    defaultRecommendK,
			MatchPolicy: defaultMatchPolicy,
		},
		Server: Server{
			Bind:               defaultServerBind,
			RateLimitPerMinute: defaultRateLimitPerMinute,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
