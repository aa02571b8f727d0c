package factory

import (
	"github.com/jonboulle/clockwork"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory assembles the classifier, the dispatcher and the notifier
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	clock  clockwork.Clock
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger, clock clockwork.Clock) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
		clock:  clock,
	}
}

// CreateClassifier creates the classifier from the configured keywords
func (f *NotifierFactory) CreateClassifier() (*core.Classifier, error) {
	notifyCfg, err := f.cfg.GetNotify()
	if err != nil {
		return nil, err
	}
	return core.NewClassifier(notifyCfg.Keywords), nil
}

// CreateActions reads and validates the per-event action table
func (f *NotifierFactory) CreateActions() (core.ActionTable, error) {
	notifyCfg, err := f.cfg.GetNotify()
	if err != nil {
		return nil, err
	}
	return notifyCfg.Actions, nil
}

// CreateTiming reads the inter-cue delay and the light hold
func (f *NotifierFactory) CreateTiming() (core.DispatchTiming, error) {
	soundCfg, err := f.cfg.GetSound()
	if err != nil {
		return core.DispatchTiming{}, err
	}
	patliteCfg, err := f.cfg.GetPatlite()
	if err != nil {
		return core.DispatchTiming{}, err
	}
	return core.DispatchTiming{
		SoundDelay: soundCfg.Delay,
		Hold:       patliteCfg.Hold,
	}, nil
}

// CreateDispatcher creates the dispatcher over the given outputs. It cannot
// fail, so an opened light is always handed on to its owner.
func (f *NotifierFactory) CreateDispatcher(
	actions core.ActionTable,
	timing core.DispatchTiming,
	light core.SignalLight,
	player core.SoundPlayer,
	broadcaster core.Broadcaster,
) *core.Dispatcher {
	return core.NewDispatcher(
		light,
		player,
		broadcaster,
		actions,
		f.cfg.GetString("sound.alert_cue"),
		timing,
		f.clock,
		f.logger.Named("dispatch"),
	)
}

// CreateNotifier creates the notifier for one poll pass
func (f *NotifierFactory) CreateNotifier(
	mailbox core.Mailbox,
	parser core.MessageParser,
	classifier *core.Classifier,
	dispatcher *core.Dispatcher,
	recorder core.RunRecorder,
) *core.Notifier {
	return core.NewNotifier(
		mailbox,
		parser,
		classifier,
		dispatcher,
		recorder,
		f.cfg.GetIMAP().SearchFrom,
		f.clock,
		f.logger,
	)
}
