package config

const (
	defaultConfigPath             = "~/.config/vinscan/config.toml"
	defaultStateDir               = "~/.local/share/vinscan"
	defaultLogDir                 = "~/.local/share/vinscan/logs"
	defaultExportDir              = "."
	defaultEnvFile                = ".env"
	defaultRecognitionBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultRecognitionModel       = "gemini-2.0-flash"
	defaultRecognitionTimeout     = 30
	defaultRecognitionMaxImageMiB = 12
	defaultDateLayout             = "02/01/2006"
	defaultTimeLayout             = "15:04"
	defaultTimezone               = "Local"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
			EnvFile:   defaultEnvFile,
		},
		Recognition: Recognition{
			BaseURL:        defaultRecognitionBaseURL,
			Model:          defaultRecognitionModel,
			TimeoutSeconds: defaultRecognitionTimeout,
			MaxImageBytes:  defaultRecognitionMaxImageMiB << 20,
		},
		History: History{
			DateLayout: defaultDateLayout,
			TimeLayout: defaultTimeLayout,
			Timezone:   defaultTimezone,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
