package meta

const (
	// CLIName is the binary name and the directory name used under the
	// user's config home.
	CLIName = "tablectl"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "TABLECTL"
)
