package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"mime"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// MessageParser decodes the Subject and From headers of raw messages
type MessageParser struct {
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewMessageParser creates a new message parser
func NewMessageParser(logger *zap.Logger, textProcessor *utils.TextProcessor) *MessageParser {
	return &MessageParser{
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Parse reads the header of a raw RFC 5322 message. Encoded words in any
// charset are decoded to UTF-8; a body in an unknown charset does not fail
// the parse since only the header is needed.
func (p *MessageParser) Parse(uid uint32, raw []byte) (*core.MessageCandidate, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return nil, fmt.Errorf("failed to parse message %d: %w", uid, err)
	}
	if entity == nil {
		return nil, fmt.Errorf("failed to parse message %d: empty entity", uid)
	}

	header := mail.Header{Header: entity.Header}

	return &core.MessageCandidate{
		UID:     uid,
		Subject: p.decodeField(uid, header, "Subject"),
		From:    p.decodeField(uid, header, "From"),
	}, nil
}

// decodeField returns the decoded header value. Charsets go-message cannot
// handle are retried through the IANA index, and bytes that still fail to
// decode become U+FFFD.
func (p *MessageParser) decodeField(uid uint32, header mail.Header, key string) string {
	value, err := header.Text(key)
	if err == nil {
		return p.textProcessor.SanitizeUTF8(value)
	}

	p.logger.Debug("Falling back to lenient header decoding",
		zap.Uint32("uid", uid),
		zap.String("header", key),
		zap.Error(err))

	raw := header.Get(key)
	decoded, err := lenientDecoder.DecodeHeader(raw)
	if err != nil {
		return p.textProcessor.SanitizeUTF8(raw)
	}
	return p.textProcessor.SanitizeUTF8(decoded)
}

var lenientDecoder = mime.WordDecoder{CharsetReader: lenientCharsetReader}

func lenientCharsetReader(charset string, input io.Reader) (io.Reader, error) {
	var enc encoding.Encoding
	if e, err := ianaindex.MIME.Encoding(charset); err == nil && e != nil {
		enc = e
	} else if e, err := ianaindex.IANA.Encoding(charset); err == nil && e != nil {
		enc = e
	} else {
		enc = unicode.UTF8
	}
	return enc.NewDecoder().Reader(input), nil
}
