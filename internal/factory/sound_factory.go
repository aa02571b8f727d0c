package factory

import (
	"os"

	"github.com/mikey/kopi-bell/internal/adapters/sound"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"go.uber.org/zap"
)

// SoundFactory creates the audio cue player
type SoundFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSoundFactory creates a new sound factory
func NewSoundFactory(cfg *config.Config, logger *zap.Logger) *SoundFactory {
	return &SoundFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSoundPlayer creates the player, or a silent one when sound is off.
// A missing sound directory is only warned about; each cue then fails on
// its own and the dispatch goes on.
func (f *SoundFactory) CreateSoundPlayer() (core.SoundPlayer, error) {
	soundCfg, err := f.cfg.GetSound()
	if err != nil {
		return nil, err
	}

	if !soundCfg.Enabled {
		f.logger.Info("Sound disabled")
		return sound.Disabled{}, nil
	}

	if info, err := os.Stat(soundCfg.Dir); err != nil || !info.IsDir() {
		f.logger.Warn("Sound directory not found", zap.String("dir", soundCfg.Dir))
	}

	return sound.NewExecPlayer(soundCfg.Dir, soundCfg.Player, soundCfg.PlayerArgs, f.logger.Named("sound")), nil
}
