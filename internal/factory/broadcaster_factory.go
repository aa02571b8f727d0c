package factory

import (
	"github.com/mikey/kopi-bell/internal/adapters/line"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"go.uber.org/zap"
)

// BroadcasterFactory creates the chat broadcast client
type BroadcasterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBroadcasterFactory creates a new broadcaster factory
func NewBroadcasterFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *BroadcasterFactory {
	return &BroadcasterFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateBroadcaster creates the LINE broadcast client
func (f *BroadcasterFactory) CreateBroadcaster() (core.Broadcaster, error) {
	lineCfg, err := f.cfg.GetLINE()
	if err != nil {
		return nil, err
	}
	return line.NewClient(
		lineCfg.Token,
		lineCfg.Endpoint,
		lineCfg.Timeout,
		f.logger.Named("line"),
		f.textProcessor,
	), nil
}
