// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "codecraft config" command.
//
// Command: config [subcommand]
// Aliases: cfg
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	get <key>           Print one value
//	set <key> <value>   Change one value and save
//	reset --confirm     Write the default configuration
//	path                Print the config file location
//	init                Write a default config file if none exists
//
// Examples:
//
//	codecraft config set server.url http://10.0.0.5:5000
//	codecraft config set watch.ignore "target, dist"
//	codecraft config get history.enabled --json
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/jeranaias/codecraft-tui/internal/config"
	"github.com/jeranaias/codecraft-tui/internal/util"
)

const configUsage = "codecraft config [show|get <key>|set <key> <value>|reset --confirm|path|init]"

// ConfigValueData is the JSON payload of "config get" and "config set".
type ConfigValueData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ConfigPathData is the JSON payload of "config path" and "config init".
type ConfigPathData struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Created bool   `json:"created,omitempty"`
}

func runConfig(_ context.Context, env *Env, args Args) error {
	p := args.Parser()

	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
		return configShow(env)
	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "codecraft config get <key>")
		}
		return configGet(env, key)
	case "set":
		key, value := p.Positional(1), p.JoinPositional(2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "codecraft config set <key> <value>")
		}
		return configSet(env, key, value)
	case "reset":
		if !p.BoolFlag("confirm", "yes", "y") {
			return NewUsageError("refusing to reset configuration without --confirm", "codecraft config reset --confirm")
		}
		return configWrite(env, config.Default(), true)
	case "path":
		path, err := configFilePath(env)
		if err != nil {
			return err
		}
		_, statErr := os.Stat(path)
		if env.JSON {
			return env.writeJSON("config", ConfigPathData{Path: path, Exists: statErr == nil})
		}
		fmt.Fprintln(env.Out, path)
		return nil
	case "init":
		return configInit(env)
	default:
		return NewUsageError("unknown config subcommand: "+sub, configUsage)
	}
}

// configFilePath is the file config changes are written to.
func configFilePath(env *Env) (string, error) {
	if env.ConfigPath != "" {
		return env.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func configShow(env *Env) error {
	if env.JSON {
		return env.writeJSON("config", env.Config)
	}
	fmt.Fprintln(env.Out, TitleStyle.Render("codecraft configuration"))
	section := ""
	for _, key := range config.GetAllKeys() {
		v, err := env.Config.Get(key)
		if err != nil {
			continue
		}
		if head, _, ok := strings.Cut(key, "."); ok && head != section {
			section = head
			fmt.Fprintln(env.Out, "\n["+section+"]")
		}
		fmt.Fprintf(env.Out, "  %s %s\n", DimStyle.Render(util.PadRight(key, 28)), ValueStyle.Render(formatConfigValue(v)))
	}
	return nil
}

func formatConfigValue(v any) string {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return "[]"
		}
		return strings.Join(val, ", ")
	case string:
		return lo.Ternary(val == "", `""`, val)
	default:
		return fmt.Sprint(val)
	}
}

func unknownKeyError(key string) error {
	example := "codecraft config get server.url"
	if s := SuggestFrom(key, config.GetAllKeys()); s != "" {
		example = "codecraft config get " + s
	}
	return NewValidationErrorWithExample("key", key, "unknown configuration key", example)
}

func configGet(env *Env, key string) error {
	if !lo.Contains(config.GetAllKeys(), key) {
		return unknownKeyError(key)
	}
	v, err := env.Config.Get(key)
	if err != nil {
		return unknownKeyError(key)
	}
	if env.JSON {
		return env.writeJSON("config", ConfigValueData{Key: key, Value: v})
	}
	fmt.Fprintln(env.Out, formatConfigValue(v))
	return nil
}

func configSet(env *Env, key, value string) error {
	if !lo.Contains(config.GetAllKeys(), key) || key == "version" {
		return unknownKeyError(key)
	}

	// Validate a copy first so a bad value never reaches the running config.
	updated := env.Config.Clone()
	if err := updated.Set(key, value); err != nil {
		return NewValidationErrorWithExample(key, value, err.Error(), "")
	}
	updated.SetDefaults()
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := configWrite(env, updated, false); err != nil {
		return err
	}

	v, _ := updated.Get(key)
	if env.JSON {
		return env.writeJSON("config", ConfigValueData{Key: key, Value: v})
	}
	fmt.Fprintf(env.Out, "%s = %s\n", key, formatConfigValue(v))
	return nil
}

// configWrite saves cfg and makes it the running config.
func configWrite(env *Env, cfg *config.Config, announce bool) error {
	path, err := configFilePath(env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "save", path, err)
	}
	env.Config = cfg
	if announce {
		if env.JSON {
			return env.writeJSON("config", ConfigPathData{Path: path, Exists: true, Created: true})
		}
		fmt.Fprintf(env.Out, "Wrote %s\n", path)
	}
	return nil
}

func configInit(env *Env) error {
	path, err := configFilePath(env)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		if env.JSON {
			return env.writeJSON("config", ConfigPathData{Path: path, Exists: true})
		}
		fmt.Fprintf(env.Out, "%s already exists\n", path)
		return nil
	}
	return configWrite(env, config.Default(), true)
}
