package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joeshaw/envdecode"

	"github.com/izbuzz/blackjackd/internal/game"
)

// Config is the complete server configuration. Values come from, in order
// of increasing precedence: built-in defaults, the HCL config file, and
// BLACKJACKD_* environment variables.
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `env:"BLACKJACKD_ADDRESS"`
	LogLevel string `env:"BLACKJACKD_LOG_LEVEL"`
}

// GameSettings contains the rules applied to every game.
type GameSettings struct {
	NumDecks               int `env:"BLACKJACKD_NUM_DECKS"`
	DecisionTimeoutSeconds int `env:"BLACKJACKD_DECISION_TIMEOUT"`
	MaxPlayers             int `env:"BLACKJACKD_MAX_PLAYERS"`
}

// fileConfig mirrors Config for HCL decoding; pointer blocks so either
// block may be omitted from the file.
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Game   *gameBlock   `hcl:"game,block"`
}

type serverBlock struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

type gameBlock struct {
	NumDecks               int `hcl:"num_decks,optional"`
	DecisionTimeoutSeconds int `hcl:"decision_timeout_seconds,optional"`
	MaxPlayers             int `hcl:"max_players,optional"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  ":8080",
			LogLevel: "info",
		},
		Game: GameSettings{
			NumDecks:               game.DefaultNumDecks,
			DecisionTimeoutSeconds: int(game.DefaultDecisionTimeout / time.Second),
			MaxPlayers:             8,
		},
	}
}

// LoadConfig loads configuration from an HCL file, then applies environment
// overrides. A missing file is not an error; defaults apply.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			parser := hclparse.NewParser()
			file, diags := parser.ParseHCLFile(filename)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
			}

			var fc fileConfig
			if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode config file: %s", diags.Error())
			}
			config.merge(&fc)
		}
	}

	if err := envdecode.Decode(config); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return config, nil
}

// merge overlays non-zero file values onto the defaults.
func (c *Config) merge(fc *fileConfig) {
	if fc.Server != nil {
		if fc.Server.Address != "" {
			c.Server.Address = fc.Server.Address
		}
		if fc.Server.LogLevel != "" {
			c.Server.LogLevel = fc.Server.LogLevel
		}
	}
	if fc.Game != nil {
		if fc.Game.NumDecks != 0 {
			c.Game.NumDecks = fc.Game.NumDecks
		}
		if fc.Game.DecisionTimeoutSeconds != 0 {
			c.Game.DecisionTimeoutSeconds = fc.Game.DecisionTimeoutSeconds
		}
		if fc.Game.MaxPlayers != 0 {
			c.Game.MaxPlayers = fc.Game.MaxPlayers
		}
	}
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address must be set")
	}
	if c.Game.NumDecks < 1 {
		return fmt.Errorf("num_decks must be at least 1, got %d", c.Game.NumDecks)
	}
	if c.Game.DecisionTimeoutSeconds < 1 {
		return fmt.Errorf("decision_timeout_seconds must be positive, got %d", c.Game.DecisionTimeoutSeconds)
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("max_players must be at least 1, got %d", c.Game.MaxPlayers)
	}
	// A two-deck shoe comfortably serves a couple dozen hands; beyond that
	// the deal alone could run the shoe dry.
	if c.Game.MaxPlayers > 24*c.Game.NumDecks {
		return fmt.Errorf("max_players %d too large for %d decks", c.Game.MaxPlayers, c.Game.NumDecks)
	}
	return nil
}

// GameConfig converts the settings into the engine's configuration.
func (c *Config) GameConfig() game.Config {
	return game.Config{
		NumDecks:        c.Game.NumDecks,
		DecisionTimeout: time.Duration(c.Game.DecisionTimeoutSeconds) * time.Second,
	}
}
