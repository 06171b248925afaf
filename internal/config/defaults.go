package config

const (
	defaultDataDir          = "~/.local/share/phy"
	defaultLogDir           = "~/.local/share/phy/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultHistoryLimit     = 512

	databaseFileName = "session.db"
	socketFileName   = "phyd.sock"
	lockFileName     = "phyd.lock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Wizard: Wizard{
			HistoryLimit: defaultHistoryLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
