package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-ini/ini"
	"go.uber.org/zap/zapcore"

	"github.com/rapidmidiex/rmxpiano/music"
	"github.com/rapidmidiex/rmxpiano/vpiano"
)

type Piano struct {
	// First on-screen key.
	From string `ini:"from"`
	// On-screen keys stop before this note.
	To string `ini:"to"`
	// How long a key stays down after a terminal key press. Terminals do
	// not report key releases.
	Hold time.Duration `ini:"hold"`
	// Optional YAML key code layout.
	Layout string `ini:"layout"`
}

type Feed struct {
	// Listen address of the state feed, ex: ":8000". Empty disables it.
	Addr string `ini:"addr"`
}

type Log struct {
	File  string `ini:"file"`
	Level string `ini:"level"`
}

type Config struct {
	Piano Piano `ini:"piano"`
	Feed  Feed  `ini:"feed"`
	Log   Log   `ini:"log"`
}

var ErrInvalid = errors.New("invalid config")

func Default() Config {
	return Config{
		Piano: Piano{
			From: vpiano.DefaultFrom,
			To:   vpiano.DefaultTo,
			Hold: 300 * time.Millisecond,
		},
		Log: Log{
			File:  "rmxpiano.log",
			Level: "info",
		},
	}
}

// Load reads the INI file at path on top of the defaults. Keys missing from
// the file keep their default value. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	for name, v := range map[string]any{
		"piano": &c.Piano,
		"feed":  &c.Feed,
		"log":   &c.Log,
	} {
		if !f.HasSection(name) {
			continue
		}
		if err := f.Section(name).MapTo(v); err != nil {
			return Config{}, fmt.Errorf("config [%s]: %w", name, err)
		}
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	from, err := music.ParsePitch(c.Piano.From)
	if err != nil {
		return fmt.Errorf("%w: piano.from: %v", ErrInvalid, err)
	}
	to, err := music.ParsePitch(c.Piano.To)
	if err != nil {
		return fmt.Errorf("%w: piano.to: %v", ErrInvalid, err)
	}
	if from.Height >= to.Height {
		return fmt.Errorf("%w: piano range %s..%s goes down", ErrInvalid, from, to)
	}
	if !vpiano.InRange(from.Height) || !vpiano.InRange(to.Height-1) {
		return fmt.Errorf("%w: piano range %s..%s outside A0..C8", ErrInvalid, from, to)
	}
	if c.Piano.Hold <= 0 {
		return fmt.Errorf("%w: piano.hold must be positive", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}
