package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewsSources is the feed registry loaded from the news YAML config.
type NewsSources struct {
	RSSFeeds   []string    `yaml:"rss_feeds"`
	APISources []APISource `yaml:"api_sources"`
	ScrapeURLs []string    `yaml:"scrape_urls"`
}

// APISource is one JSON news API returning article URLs.
type APISource struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Params  map[string]string `yaml:"params"`
	Headers map[string]string `yaml:"headers"`
}

// SocialSources is the keyword and subreddit registry for the social
// scraper.
type SocialSources struct {
	Keywords   []string `yaml:"keywords"`
	Subreddits []string `yaml:"subreddits"`
}

// RankingWeights maps metric names to their weight in the composite
// asset score.
type RankingWeights struct {
	Weights map[string]float64 `yaml:"weights"`
}

// Bridge is one tracked cross-chain bridge deployment.
type Bridge struct {
	Name           string   `yaml:"name"`
	Chain          string   `yaml:"chain"`
	Contracts      []string `yaml:"contracts"`
	DepositEvents  []string `yaml:"deposit_events"`
	WithdrawEvents []string `yaml:"withdraw_events"`
}

// BridgeRegistry is the bridge registry file.
type BridgeRegistry struct {
	Bridges []Bridge `yaml:"bridges"`
}

// NFTCollection is one tracked NFT collection.
type NFTCollection struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Contract string `yaml:"contract"`
}

// NFTRegistry is the NFT collection registry file.
type NFTRegistry struct {
	Collections []NFTCollection `yaml:"collections"`
}

// Protocol is one tracked DeFi protocol.
type Protocol struct {
	Name      string   `yaml:"name"`
	Slug      string   `yaml:"slug"`
	Contracts []string `yaml:"contracts"`
}

// ProtocolRegistry is the DeFi protocol registry file.
type ProtocolRegistry struct {
	Protocols []Protocol `yaml:"protocols"`
}

// AlertRule is one threshold rule evaluated against the warehouse. The
// query must yield a single numeric value.
type AlertRule struct {
	Name      string  `yaml:"name"`
	Query     string  `yaml:"query"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
	Message   string  `yaml:"message"`
}

// AlertRules is the alert registry file.
type AlertRules struct {
	Rules []AlertRule `yaml:"rules"`
}

// LoadYAML reads one YAML registry file into dest.
func LoadYAML(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadAssetMap reads the cashtag-to-asset registry, uppercasing tags.
func LoadAssetMap(path string) (map[string]string, error) {
	var raw map[string]string
	if err := LoadYAML(path, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for tag, asset := range raw {
		out[strings.ToUpper(tag)] = asset
	}
	return out, nil
}
