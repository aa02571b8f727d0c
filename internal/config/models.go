package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/mikey/kopi-bell/internal/core"
)

// IMAPConfig represents the configuration for the notification inbox
type IMAPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Mailbox    string
	SearchFrom bool
}

// Address returns host:port for dialing
func (c IMAPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LINEConfig represents the configuration for the LINE broadcast API
type LINEConfig struct {
	Token    string
	Endpoint string
	Timeout  time.Duration
}

// SoundConfig represents the configuration for the audio cues
type SoundConfig struct {
	Enabled    bool
	Delay      time.Duration
	Dir        string
	Player     string
	PlayerArgs []string
	AlertCue   string
}

// PatliteConfig represents the configuration for the signal light
type PatliteConfig struct {
	Enabled   bool
	ActiveLow bool
	Hold      time.Duration
	Pins      map[core.Color]string
}

// NotifyConfig represents the keywords and per-event actions
type NotifyConfig struct {
	Keywords core.Keywords
	Actions  core.ActionTable
}

// GetIMAP returns the mailbox configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Host:       c.GetString("imap.host"),
		Port:       c.GetInt("imap.port"),
		User:       c.GetString("imap.user"),
		Password:   c.GetString("imap.password"),
		Mailbox:    c.GetString("imap.mailbox"),
		SearchFrom: c.GetBool("imap.search_from"),
	}
}

// GetLINE returns the LINE configuration
func (c *Config) GetLINE() (LINEConfig, error) {
	timeout, err := c.GetSeconds("line.timeout")
	if err != nil {
		return LINEConfig{}, err
	}
	return LINEConfig{
		Token:    c.GetString("line.token"),
		Endpoint: c.GetString("line.endpoint"),
		Timeout:  timeout,
	}, nil
}

// GetSound returns the sound configuration
func (c *Config) GetSound() (SoundConfig, error) {
	delay, err := c.GetSeconds("sound.delay")
	if err != nil {
		return SoundConfig{}, err
	}
	return SoundConfig{
		Enabled:    c.GetBool("sound.enabled"),
		Delay:      delay,
		Dir:        c.GetString("sound.dir"),
		Player:     c.GetString("sound.player"),
		PlayerArgs: c.GetStringSlice("sound.player_args"),
		AlertCue:   c.GetString("sound.alert_cue"),
	}, nil
}

// GetPatlite returns the signal light configuration
func (c *Config) GetPatlite() (PatliteConfig, error) {
	hold, err := c.GetSeconds("patlite.hold")
	if err != nil {
		return PatliteConfig{}, err
	}

	pins := make(map[core.Color]string, len(core.Colors))
	for _, color := range core.Colors {
		pin := c.GetString("patlite.pins." + string(color))
		if pin == "" {
			return PatliteConfig{}, fmt.Errorf("no pin configured for %s channel", color)
		}
		pins[color] = pin
	}

	return PatliteConfig{
		Enabled:   c.GetBool("patlite.enabled"),
		ActiveLow: c.GetBool("patlite.active_low"),
		Hold:      hold,
		Pins:      pins,
	}, nil
}

// GetNotify returns the classification keywords and the action table
func (c *Config) GetNotify() (NotifyConfig, error) {
	actions := core.ActionTable{
		core.EventStreamStarted: {
			Text:     c.GetString("notify.started.text"),
			VoiceCue: c.GetString("notify.started.voice_cue"),
			Color:    core.Color(c.GetString("notify.started.color")),
		},
		core.EventStreamStartingSoon: {
			Text:     c.GetString("notify.soon.text"),
			VoiceCue: c.GetString("notify.soon.voice_cue"),
			Color:    core.Color(c.GetString("notify.soon.color")),
		},
	}
	if err := actions.Validate(); err != nil {
		return NotifyConfig{}, err
	}

	return NotifyConfig{
		Keywords: core.Keywords{
			From:         c.GetString("notify.from_keyword"),
			Began:        c.GetString("notify.began_keyword"),
			StartingSoon: c.GetString("notify.soon_keyword"),
		},
		Actions: actions,
	}, nil
}
