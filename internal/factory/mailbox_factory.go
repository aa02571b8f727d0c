package factory

import (
	"github.com/mikey/kopi-bell/internal/adapters/mailbox"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"go.uber.org/zap"
)

// MailboxFactory creates the inbox access and the message parser
type MailboxFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *MailboxFactory {
	return &MailboxFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateMailbox creates the IMAP mailbox. Nothing is dialed until Open.
func (f *MailboxFactory) CreateMailbox() core.Mailbox {
	imapCfg := f.cfg.GetIMAP()
	f.logger.Debug("Mailbox configured",
		zap.String("address", imapCfg.Address()),
		zap.String("mailbox", imapCfg.Mailbox),
		zap.Bool("search_from", imapCfg.SearchFrom))
	return mailbox.NewIMAPMailbox(imapCfg, f.logger.Named("imap"))
}

// CreateParser creates the header decoder
func (f *MailboxFactory) CreateParser() core.MessageParser {
	return mailbox.NewMessageParser(f.logger.Named("parser"), f.textProcessor)
}

