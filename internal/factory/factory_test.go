package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mikey/kopi-bell/internal/adapters/patlite"
	"github.com/mikey/kopi-bell/internal/adapters/sound"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/mikey/kopi-bell/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPin struct{}

func (stubPin) Out(bool) error { return nil }

func (stubPin) Halt() error { return nil }

type countingHardware struct {
	initErr error
	calls   int
}

func (h *countingHardware) Init() error {
	h.calls++
	return h.initErr
}

func (h *countingHardware) Pin(string) (patlite.Pin, error) {
	h.calls++
	return stubPin{}, nil
}

func newTestConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for key, value := range settings {
		v.Set(key, value)
	}
	return config.NewFromViper(v)
}

func TestSignalLightDisabledNeverTouchesHardware(t *testing.T) {
	hw := &countingHardware{}
	cfg := newTestConfig(map[string]any{"patlite.enabled": false})

	light, err := NewSignalFactory(cfg, zap.NewNop(), hw).CreateSignalLight()
	require.NoError(t, err)

	assert.IsType(t, patlite.Disabled{}, light)
	require.NoError(t, light.On(core.ColorRed))
	require.NoError(t, light.AllOff())
	require.NoError(t, light.Close())
	assert.Zero(t, hw.calls)
}

func TestSignalLightFallsBackWhenHardwareMissing(t *testing.T) {
	hw := &countingHardware{initErr: errors.New("no gpio chip")}
	cfg := newTestConfig(map[string]any{"patlite.enabled": true})

	light, err := NewSignalFactory(cfg, zap.NewNop(), hw).CreateSignalLight()
	require.NoError(t, err)
	assert.IsType(t, patlite.Disabled{}, light)
}

func TestSignalLightOpensHardware(t *testing.T) {
	hw := &countingHardware{}
	cfg := newTestConfig(map[string]any{"patlite.enabled": true})

	light, err := NewSignalFactory(cfg, zap.NewNop(), hw).CreateSignalLight()
	require.NoError(t, err)
	assert.IsType(t, &patlite.Light{}, light)
	// one init plus one lookup per channel
	assert.Equal(t, 1+len(core.Colors), hw.calls)
}

func TestSignalLightRejectsBadHold(t *testing.T) {
	cfg := newTestConfig(map[string]any{"patlite.hold": "-1"})

	_, err := NewSignalFactory(cfg, zap.NewNop(), &countingHardware{}).CreateSignalLight()
	assert.Error(t, err)
}

func TestSoundPlayer(t *testing.T) {
	off := newTestConfig(map[string]any{"sound.enabled": false})
	player, err := NewSoundFactory(off, zap.NewNop()).CreateSoundPlayer()
	require.NoError(t, err)
	assert.IsType(t, sound.Disabled{}, player)

	on := newTestConfig(map[string]any{"sound.enabled": true, "sound.dir": t.TempDir()})
	player, err = NewSoundFactory(on, zap.NewNop()).CreateSoundPlayer()
	require.NoError(t, err)
	assert.IsType(t, &sound.ExecPlayer{}, player)
}

func TestBroadcaster(t *testing.T) {
	cfg := newTestConfig(map[string]any{"line.token": "secret", "line.timeout": "2.5"})
	broadcaster, err := NewBroadcasterFactory(cfg, zap.NewNop(), utils.NewTextProcessor(zap.NewNop())).CreateBroadcaster()
	require.NoError(t, err)
	assert.NotNil(t, broadcaster)

	bad := newTestConfig(map[string]any{"line.timeout": "soon"})
	_, err = NewBroadcasterFactory(bad, zap.NewNop(), utils.NewTextProcessor(zap.NewNop())).CreateBroadcaster()
	assert.Error(t, err)
}

func TestDispatcherUsesConfiguredActions(t *testing.T) {
	cfg := newTestConfig(map[string]any{
		"notify.started.color": "green",
		"sound.delay":          "0",
		"patlite.hold":         "0",
	})
	f := NewNotifierFactory(cfg, zap.NewNop(), clockwork.NewFakeClock())

	actions, err := f.CreateActions()
	require.NoError(t, err)
	timing, err := f.CreateTiming()
	require.NoError(t, err)
	dispatcher := f.CreateDispatcher(actions, timing, patlite.Disabled{}, sound.Disabled{}, nil)

	action, ok := dispatcher.Action(core.EventStreamStarted)
	require.True(t, ok)
	assert.Equal(t, core.ColorGreen, action.Color)
	assert.Equal(t, "voice_started.wav", action.VoiceCue)

	action, ok = dispatcher.Action(core.EventStreamStartingSoon)
	require.True(t, ok)
	assert.Equal(t, core.ColorYellow, action.Color)
}

func TestActionsRejectUnknownColor(t *testing.T) {
	cfg := newTestConfig(map[string]any{"notify.soon.color": "purple"})

	_, err := NewNotifierFactory(cfg, zap.NewNop(), clockwork.NewFakeClock()).CreateActions()
	assert.ErrorIs(t, err, core.ErrUnknownColor)
}

func TestTiming(t *testing.T) {
	cfg := newTestConfig(map[string]any{"sound.delay": "1.5", "patlite.hold": "10"})
	timing, err := NewNotifierFactory(cfg, zap.NewNop(), clockwork.NewFakeClock()).CreateTiming()
	require.NoError(t, err)
	assert.Equal(t, core.DispatchTiming{SoundDelay: 1500 * time.Millisecond, Hold: 10 * time.Second}, timing)

	bad := newTestConfig(map[string]any{"sound.delay": "abc"})
	_, err = NewNotifierFactory(bad, zap.NewNop(), clockwork.NewFakeClock()).CreateTiming()
	assert.Error(t, err)
}

func TestClassifierUsesConfiguredKeywords(t *testing.T) {
	cfg := newTestConfig(map[string]any{"notify.from_keyword": "alerts@example.com"})
	classifier, err := NewNotifierFactory(cfg, zap.NewNop(), clockwork.NewFakeClock()).CreateClassifier()
	require.NoError(t, err)

	assert.Equal(t, "alerts@example.com", classifier.FromKeyword())
	assert.Equal(t, core.EventStreamStarted, classifier.Classify(&core.MessageCandidate{
		From:    "Kopi <alerts@example.com>",
		Subject: core.DefaultBeganKeyword,
	}))
}

