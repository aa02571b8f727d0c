package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/logging"
)

// CLIFlags contains all command line flags for the check tool
type CLIFlags struct {
	// Input flags
	InputFile string

	// Dispatch runs the real outputs for a matching message
	Dispatch bool

	// Keyword overrides
	FromKeyword string

	// Logging flags
	Verbose bool
	JSONLog bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input .eml file (use stdin if not specified)")
	flag.BoolVar(&flags.Dispatch, "dispatch", false, "Fire the light, sound and LINE broadcast for a matching message")

	// Keyword overrides
	flag.StringVar(&flags.FromKeyword, "from", "", "Sender keyword (overrides configuration)")

	// Logging flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the check tool.
// The outputs are only registered when a dispatch was asked for.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)

		if flags.Dispatch {
			if err := cfg.Validate("line.token"); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	if flags.Dispatch {
		if err := provideOutputs(container); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// applyFlags layers command line overrides on top of the loaded configuration
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.FromKeyword != "" {
		cfg.GetViper().Set("notify.from_keyword", flags.FromKeyword)
	}
}
