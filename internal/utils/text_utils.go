package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateRunes cuts text to at most maxRunes characters. LINE counts
// message length in characters, not bytes.
func (tp *TextProcessor) TruncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxRunes])

	tp.logger.Debug("Text truncated",
		zap.Int("original_runes", len(runes)),
		zap.Int("max_runes", maxRunes))

	return truncated
}

// SanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, string(utf8.RuneError))

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}
