package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path, and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to channel-manager! Let's configure your Slack bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Slack credentials.
	botToken, err := (&promptui.Prompt{
		Label:    "Slack bot token (xoxb-...)",
		Mask:     '*',
		Validate: requirePrefix("xoxb-"),
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("bot token: %w", err)
	}
	cfg.Slack.BotToken = botToken

	userToken, err := (&promptui.Prompt{
		Label: "Slack user token for membership checks (xoxp-..., blank to reuse the bot token)",
		Mask:  '*',
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("user token: %w", err)
	}
	cfg.Slack.UserToken = userToken

	secret, err := (&promptui.Prompt{
		Label: "Slack signing secret",
		Mask:  '*',
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("signing secret: %w", err)
	}
	cfg.Slack.SigningSecret = secret

	// 2. Gating channel.
	gating, err := (&promptui.Prompt{
		Label:    "Gating channel name (members may use the bot)",
		Validate: validateChannelName,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("gating channel: %w", err)
	}
	cfg.Auth.GatingChannel = strings.TrimPrefix(strings.TrimSpace(gating), "#")

	// 3. Store backend.
	driverPrompt := promptui.Select{
		Label: "Select channel store",
		Items: []string{
			"sqlite  (single database file, recommended)",
			"file    (JSONL file shared under a file lock)",
		},
	}
	driverIdx, _, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	if driverIdx == 1 {
		cfg.Store.Driver = StoreFile
		cfg.Store.Path = "data/channels.jsonl"
	}

	storePath, err := (&promptui.Prompt{
		Label:   "Store path",
		Default: cfg.Store.Path,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("store path: %w", err)
	}
	cfg.Store.Path = storePath

	// 4. Listener port.
	portStr, err := (&promptui.Prompt{
		Label:    "HTTP port for Slack events",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func requirePrefix(prefix string) promptui.ValidateFunc {
	return func(s string) error {
		if !strings.HasPrefix(s, prefix) {
			return fmt.Errorf("must start with %s", prefix)
		}
		return nil
	}
}

func validateChannelName(s string) error {
	name := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if name == "" {
		return fmt.Errorf("channel name is required")
	}
	if strings.ContainsAny(name, " \t") {
		return fmt.Errorf("channel names cannot contain spaces")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}
