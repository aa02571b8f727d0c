package factory

import (
	"github.com/mikey/kopi-bell/internal/adapters/patlite"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"go.uber.org/zap"
)

// SignalFactory creates the signal light
type SignalFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	hardware patlite.Hardware
}

// NewSignalFactory creates a new signal light factory
func NewSignalFactory(cfg *config.Config, logger *zap.Logger, hardware patlite.Hardware) *SignalFactory {
	return &SignalFactory{
		cfg:      cfg,
		logger:   logger,
		hardware: hardware,
	}
}

// CreateSignalLight opens the patlite. When it is switched off the hardware
// is never touched; when it cannot be opened the run carries on without it.
func (f *SignalFactory) CreateSignalLight() (core.SignalLight, error) {
	patliteCfg, err := f.cfg.GetPatlite()
	if err != nil {
		return nil, err
	}

	if !patliteCfg.Enabled {
		f.logger.Info("Signal light disabled")
		return patlite.Disabled{}, nil
	}

	light, err := patlite.Open(f.hardware, patliteCfg.Pins, patliteCfg.ActiveLow, f.logger.Named("patlite"))
	if err != nil {
		f.logger.Warn("Signal light unavailable, continuing without it", zap.Error(err))
		return patlite.Disabled{}, nil
	}
	return light, nil
}

