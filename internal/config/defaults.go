package config

const (
	defaultSegmentsRoot   = "~/refalign/segments"
	defaultReferencesRoot = "~/refalign/references"
	defaultOutputRoot     = "~/refalign/output"
	defaultDataDir        = "~/.local/share/refalign"
	defaultOracleBaseURL  = "http://localhost:11434"
	defaultOracleModel    = "llama3.1"
	defaultOracleTimeout  = 300
	defaultServerBind     = "127.0.0.1:7519"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SegmentsRoot:   defaultSegmentsRoot,
			ReferencesRoot: defaultReferencesRoot,
			OutputRoot:     defaultOutputRoot,
			DataDir:        defaultDataDir,
		},
		Oracle: Oracle{
			BaseURL:        defaultOracleBaseURL,
			Model:          defaultOracleModel,
			TimeoutSeconds: defaultOracleTimeout,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Verify: Verify{
			Threshold: 0,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
