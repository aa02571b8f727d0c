package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrCueMissing is returned when a sound file does not exist
var ErrCueMissing = errors.New("sound cue not found")

// ExecPlayer plays sound files through an external player such as aplay
type ExecPlayer struct {
	dir    string
	player string
	args   []string
	logger *zap.Logger
}

// NewExecPlayer creates a player that runs `player args... <dir>/<cue>`
func NewExecPlayer(dir, player string, args []string, logger *zap.Logger) *ExecPlayer {
	return &ExecPlayer{
		dir:    dir,
		player: player,
		args:   args,
		logger: logger,
	}
}

// Start launches the player and returns at once. The process is reaped in
// the background; nothing waits for its result.
func (p *ExecPlayer) Start(cue string) error {
	path, err := p.resolve(cue)
	if err != nil {
		return err
	}

	cmd := exec.Command(p.player, p.argsFor(path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.player, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			p.logger.Debug("Background cue ended with error", zap.String("cue", cue), zap.Error(err))
		}
	}()
	return nil
}

// Play runs the player and waits for it to finish
func (p *ExecPlayer) Play(ctx context.Context, cue string) error {
	path, err := p.resolve(cue)
	if err != nil {
		return err
	}

	output, err := exec.CommandContext(ctx, p.player, p.argsFor(path)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s failed: %w: %s", p.player, cue, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (p *ExecPlayer) resolve(cue string) (string, error) {
	path := filepath.Join(p.dir, cue)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrCueMissing, path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrCueMissing, path)
	}
	return path, nil
}

func (p *ExecPlayer) argsFor(path string) []string {
	args := make([]string, 0, len(p.args)+1)
	args = append(args, p.args...)
	return append(args, path)
}

// Disabled is the player used when sound is switched off
type Disabled struct{}

// Start does nothing
func (Disabled) Start(string) error { return nil }

// Play does nothing
func (Disabled) Play(context.Context, string) error { return nil }
