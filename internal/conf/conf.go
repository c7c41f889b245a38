// Package conf holds the recognised configuration options (spec §6). Loading
// is the one piece of ambient surface the core specification explicitly
// disclaims ("deliberately out of scope"); this package still exists so the
// cmd/ binaries have somewhere to decode mud.toml into, following the
// teacher's own flag-parsing main() shape.
package conf

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the struct the core receives; it never parses argv or the TOML
// file itself — that is the external collaborator's contract (spec §6).
type Config struct {
	World  WorldConfig  `toml:"world"`
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
	Term   TermConfig   `toml:"term"`
}

type WorldConfig struct {
	Addr string `toml:"addr"`
}

type ServerConfig struct {
	Port      int    `toml:"port"`
	Pass      string `toml:"pass"`
	LogFile   string `toml:"log_file"`
	LogAnsi   bool   `toml:"log_ansi"`
	DebugFile string `toml:"debug_file"`
}

type ClientConfig struct {
	ServerAddr string `toml:"server_addr"`
	ServerPass string `toml:"server_pass"`
}

type TermConfig struct {
	MaxLines      int    `toml:"max_lines"`
	EchoCmd       bool   `toml:"echo_cmd"`
	CmdDelimiter  string `toml:"cmd_delimiter"`
	IgnoreEmpty   bool   `toml:"ignore_empty_cmd"`
	SendEmptyCmd  bool   `toml:"send_empty_cmd"`
	ScriptPrefix  string `toml:"script_prefix"`
	HistoryLines  int    `toml:"history_lines"`
	ReserveCR     bool   `toml:"reserve_cr"`
}

// Default returns the configuration with every documented default applied.
func Default() Config {
	return Config{
		Term: TermConfig{
			MaxLines:     5000,
			CmdDelimiter: ";",
			SendEmptyCmd: false,
			ScriptPrefix: ".",
			HistoryLines: 200,
		},
	}
}

// Load reads and decodes a TOML file at path, starting from Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("conf: decode %s: %w", path, err)
	}
	if cfg.Term.CmdDelimiter == "" {
		cfg.Term.CmdDelimiter = ";"
	}
	return cfg, nil
}

// Delim returns the configured command delimiter as a rune, defaulting to
// ';' when the option is empty or malformed.
func (c TermConfig) Delim() rune {
	for _, r := range c.CmdDelimiter {
		return r
	}
	return ';'
}
