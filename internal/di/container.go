package di

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/kopi-bell/internal/adapters/patlite"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/factory"
	"github.com/mikey/kopi-bell/internal/logging"
	"github.com/mikey/kopi-bell/internal/metrics"
	"github.com/mikey/kopi-bell/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration; the poller refuses to start without credentials
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(config.PollerRequiredKeys...); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	// Register mailbox
	if err := container.Provide(func(f *factory.MailboxFactory) core.Mailbox {
		return f.CreateMailbox()
	}); err != nil {
		return nil, err
	}

	// Register outputs
	if err := provideOutputs(container); err != nil {
		return nil, err
	}

	// Register metrics recorder
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *metrics.Recorder {
		return metrics.NewRecorder(cfg.GetString("metrics.textfile"), logger.Named("metrics"))
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(r *metrics.Recorder) core.RunRecorder {
		return r
	}); err != nil {
		return nil, err
	}

	// Register notifier; the dispatcher opens the light, so it is built last
	if err := container.Provide(func(
		f *factory.NotifierFactory,
		mailbox core.Mailbox,
		parser core.MessageParser,
		classifier *core.Classifier,
		recorder core.RunRecorder,
		dispatcher *core.Dispatcher,
	) *core.Notifier {
		return f.CreateNotifier(mailbox, parser, classifier, dispatcher, recorder)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideShared registers what both binaries need once config and logger exist
func provideShared(container *dig.Container) error {
	if err := container.Provide(func() clockwork.Clock {
		return clockwork.NewRealClock()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register parser and classifier
	if err := container.Provide(factory.NewMailboxFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.MailboxFactory) core.MessageParser {
		return f.CreateParser()
	}); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return err
	}
	return container.Provide(func(f *factory.NotifierFactory) (*core.Classifier, error) {
		return f.CreateClassifier()
	})
}

// provideOutputs registers the light, the speaker, the chat client and the
// dispatcher over them. Nothing is opened until the dispatcher is requested.
func provideOutputs(container *dig.Container) error {
	// Register GPIO access
	if err := container.Provide(patlite.Periph); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewSignalFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSoundFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewBroadcasterFactory); err != nil {
		return err
	}

	if err := container.Provide(func(f *factory.SignalFactory) (core.SignalLight, error) {
		return f.CreateSignalLight()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.SoundFactory) (core.SoundPlayer, error) {
		return f.CreateSoundPlayer()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.BroadcasterFactory) (core.Broadcaster, error) {
		return f.CreateBroadcaster()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.NotifierFactory) (core.ActionTable, error) {
		return f.CreateActions()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.NotifierFactory) (core.DispatchTiming, error) {
		return f.CreateTiming()
	}); err != nil {
		return err
	}

	// dig builds parameters in order; the light comes last so that no
	// failing provider runs after its pins are claimed
	return container.Provide(func(
		f *factory.NotifierFactory,
		actions core.ActionTable,
		timing core.DispatchTiming,
		broadcaster core.Broadcaster,
		player core.SoundPlayer,
		light core.SignalLight,
	) *core.Dispatcher {
		return f.CreateDispatcher(actions, timing, light, player, broadcaster)
	})
}
