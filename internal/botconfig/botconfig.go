// Package botconfig loads the bot's runtime configuration from a wiki page
// on its profile subreddit, so moderators can retune enforcement without a
// redeploy. The page is ini-formatted, matching configparser conventions
// (indented continuation lines form lists).
package botconfig

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/modtools/tubeguard/internal/domain"
)

// DefaultPage is the wiki page name holding the configuration.
const DefaultPage = "youtube_spam_bot_config"

const sectionName = "youtube_spam_bot"

// Template is written when the page does not exist yet.
const Template = `[youtube_spam_bot]
subreddits=
target_ratio=0.33
lookback=50
user_whitelist=
`

// PageStore is the wiki collaborator the config layer consumes.
type PageStore interface {
	FetchPage(ctx context.Context, page string) (string, error)
	CreatePage(ctx context.Context, page, content string) error
}

// Parse turns wiki page content into a validated BotConfig.
func Parse(content string) (domain.BotConfig, error) {
	var cfg domain.BotConfig

	f, err := ini.LoadSources(ini.LoadOptions{AllowPythonMultilineValues: true}, []byte(content))
	if err != nil {
		return cfg, fmt.Errorf("parse config page: %w", err)
	}
	sec, err := f.GetSection(sectionName)
	if err != nil {
		return cfg, fmt.Errorf("config page missing [%s] section: %w", sectionName, err)
	}

	cfg.Subreddits = splitList(sec.Key("subreddits").String())
	cfg.UserWhitelist = splitList(sec.Key("user_whitelist").String())

	cfg.TargetRatio, err = sec.Key("target_ratio").Float64()
	if err != nil {
		return cfg, fmt.Errorf("target_ratio: %w", err)
	}
	cfg.Lookback, err = sec.Key("lookback").Int()
	if err != nil {
		return cfg, fmt.Errorf("lookback: %w", err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg domain.BotConfig) error {
	if len(cfg.Subreddits) == 0 {
		return fmt.Errorf("subreddits must list at least one subreddit")
	}
	if cfg.TargetRatio < 0 || cfg.TargetRatio > 1 {
		return fmt.Errorf("target_ratio must be in [0,1], got %v", cfg.TargetRatio)
	}
	if cfg.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %d", cfg.Lookback)
	}
	return nil
}

// Entries may be separated by newlines (configparser continuation style) or
// commas; blanks are dropped.
func splitList(raw string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
