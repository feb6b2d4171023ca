package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the worker fleet. Every worker loads
// the full struct; unused sections are simply ignored.
type Config struct {
	// Warehouse (BigQuery) configuration
	Warehouse WarehouseConfig

	// Run ledger (PostgreSQL) configuration
	Ledger LedgerConfig

	// Redis dedup cache configuration
	Redis RedisConfig

	// Status API configuration
	API APIConfig

	// Per-source configuration
	CoinGecko CoinGeckoConfig
	CEX       CEXConfig
	DEX       DEXConfig
	Explorer  ExplorerConfig
	Chain     ChainConfig
	GitHub    GitHubConfig
	News      NewsConfig
	Social    SocialConfig
	Model     ModelConfig
	Slither   SlitherConfig
	Analytics AnalyticsConfig
	Alerts    AlertsConfig

	// Logging configuration
	Log LogConfig
}

// WarehouseConfig holds BigQuery connection and table settings
type WarehouseConfig struct {
	ProjectID       string `envconfig:"GCP_PROJECT_ID"`
	Dataset         string `envconfig:"BQ_DATASET" default:"market_intel"`
	CredentialsPath string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS" default:""`
	Location        string `envconfig:"BQ_LOCATION" default:"US"`

	MarketTable         string `envconfig:"BQ_MARKET_TABLE" default:"market_data"`
	OHLCVTable          string `envconfig:"BQ_CEX_OHLCV_TABLE" default:"cex_ohlcv"`
	OrderBookTable      string `envconfig:"BQ_CEX_ORDER_BOOK_TABLE" default:"cex_order_books"`
	SwapsTable          string `envconfig:"BQ_DEX_SWAPS_TABLE" default:"dex_swaps"`
	OnchainTable        string `envconfig:"BQ_ONCHAIN_TABLE" default:"onchain_metrics"`
	RawLogsTable        string `envconfig:"BQ_LOGS_RAW_TABLE" default:"logs_raw"`
	LabeledEventsTable  string `envconfig:"BQ_LABELED_EVENTS_TABLE" default:"labeled_events"`
	LabeledAddrsTable   string `envconfig:"BQ_LABELED_ADDRESSES_TABLE" default:"labeled_addresses"`
	ContractCodeTable   string `envconfig:"BQ_CONTRACT_CODE_TABLE" default:"contract_code"`
	StaticAnalysisTable string `envconfig:"BQ_STATIC_ANALYSIS_TABLE" default:"contract_static_analysis"`
	MLAnalysisTable     string `envconfig:"BQ_ML_ANALYSIS_TABLE" default:"contract_ml_analysis"`
	GitHubTable         string `envconfig:"BQ_GITHUB_TABLE" default:"github_scores"`
	ArticlesTable       string `envconfig:"BQ_ARTICLES_TABLE" default:"raw_articles"`
	SocialTable         string `envconfig:"BQ_SOCIAL_TABLE" default:"raw_social_posts"`
	SentimentTable      string `envconfig:"BQ_SENTIMENT_TABLE" default:"social_sentiment"`
	RankingTable        string `envconfig:"BQ_ASSET_RANKING_TABLE" default:"asset_ranking_scores"`
	BridgeFlowsTable    string `envconfig:"BQ_DAILY_FLOWS_TABLE" default:"daily_bridge_flows"`
	NFTTrendsTable      string `envconfig:"BQ_NFT_TRENDS_TABLE" default:"nft_collection_trends"`
	ProtocolTable       string `envconfig:"BQ_PROTOCOL_METRICS_TABLE" default:"protocol_metrics"`
	TransfersTable      string `envconfig:"BQ_TOKEN_TRANSFERS_TABLE" default:"eth_token_transfers"`
	AssetMetricsTable   string `envconfig:"BQ_ASSET_METRICS_TABLE" default:"asset_metrics"`
}

// LedgerConfig holds PostgreSQL settings for the run ledger
type LedgerConfig struct {
	Host            string        `envconfig:"LEDGER_DB_HOST" default:"localhost"`
	Port            int           `envconfig:"LEDGER_DB_PORT" default:"5432"`
	User            string        `envconfig:"LEDGER_DB_USER" default:"intel"`
	Password        string        `envconfig:"LEDGER_DB_PASSWORD" default:"intel"`
	Name            string        `envconfig:"LEDGER_DB_NAME" default:"market_intel"`
	SSLMode         string        `envconfig:"LEDGER_DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"LEDGER_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"LEDGER_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"LEDGER_DB_CONN_MAX_LIFETIME" default:"5m"`
	Disabled        bool          `envconfig:"LEDGER_DISABLED" default:"false"`
}

// RedisConfig holds Redis connection settings for the dedup cache
type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_DEDUP_TTL" default:"168h"`
	Disabled bool          `envconfig:"REDIS_DISABLED" default:"false"`
}

// APIConfig holds status API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
}

// CoinGeckoConfig holds CoinGecko worker settings
type CoinGeckoConfig struct {
	BaseURL        string        `envconfig:"COINGECKO_API_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey         string        `envconfig:"COINGECKO_API_KEY" default:""`
	Category       string        `envconfig:"COINGECKO_CATEGORY" default:"artificial-intelligence"`
	MinMarketCap   float64       `envconfig:"COINGECKO_MIN_MARKET_CAP" default:"10000000"`
	MinVolumeUSD   float64       `envconfig:"COINGECKO_MIN_VOLUME_USD" default:"50000"`
	BatchSize      int           `envconfig:"COINGECKO_BATCH_SIZE" default:"20"`
	RatePerMinute  int           `envconfig:"COINGECKO_RATE_LIMIT" default:"50"`
	RequestTimeout time.Duration `envconfig:"COINGECKO_REQUEST_TIMEOUT" default:"15s"`
}

// CEXConfig holds centralized exchange worker settings
type CEXConfig struct {
	Pairs          []string      `envconfig:"CEX_PAIRS" default:"BTC/USDT,ETH/USDT"`
	Interval       string        `envconfig:"CEX_INTERVAL" default:"1m"`
	OrderBookDepth int           `envconfig:"CEX_ORDER_BOOK_DEPTH" default:"20"`
	BinanceRPS     int           `envconfig:"BINANCE_RATE_LIMIT_RPS" default:"20"`
	KrakenRPS      int           `envconfig:"KRAKEN_RATE_LIMIT_RPS" default:"1"`
	MaxConcurrency int           `envconfig:"CEX_MAX_CONCURRENCY" default:"4"`
	RequestTimeout time.Duration `envconfig:"CEX_REQUEST_TIMEOUT" default:"10s"`
}

// DEXConfig holds The Graph worker settings
type DEXConfig struct {
	Endpoint       string        `envconfig:"THEGRAPH_UNISWAP_ENDPOINT" default:"https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"`
	Lookback       time.Duration `envconfig:"DEX_LOOKBACK" default:"1h"`
	PageSize       int           `envconfig:"DEX_PAGE_SIZE" default:"1000"`
	MaxSwaps       int           `envconfig:"DEX_MAX_SWAPS" default:"5000"`
	RequestTimeout time.Duration `envconfig:"DEX_REQUEST_TIMEOUT" default:"30s"`
}

// ExplorerConfig holds Etherscan-family explorer settings
type ExplorerConfig struct {
	EtherscanKey   string        `envconfig:"ETHERSCAN_API_KEY" default:""`
	BscscanKey     string        `envconfig:"BSCSCAN_API_KEY" default:""`
	PolygonscanKey string        `envconfig:"POLYGONSCAN_API_KEY" default:""`
	RatePerSecond  int           `envconfig:"EXPLORER_RATE_LIMIT" default:"5"`
	PageSize       int           `envconfig:"EXPLORER_PAGE_SIZE" default:"1000"`
	BatchSize      int           `envconfig:"EXPLORER_BATCH_SIZE" default:"20"`
	WhaleTxUSD     float64       `envconfig:"WHALE_TRANSACTION_USD" default:"100000"`
	RequestTimeout time.Duration `envconfig:"EXPLORER_REQUEST_TIMEOUT" default:"15s"`
}

// ChainConfig holds Ethereum node settings for the chainsync worker
type ChainConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:"http://localhost:8545"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
	BlockBatchSize int64         `envconfig:"CHAIN_BLOCK_BATCH_SIZE" default:"500"`
	MaxBlocks      int64         `envconfig:"CHAIN_MAX_BLOCKS" default:"5000"`
	Confirmations  int64         `envconfig:"CHAIN_CONFIRMATIONS" default:"12"`
}

// GitHubConfig holds GitHub worker settings
type GitHubConfig struct {
	Token          string        `envconfig:"GITHUB_PAT" default:""`
	BatchSize      int           `envconfig:"GITHUB_BATCH_SIZE" default:"20"`
	RequestTimeout time.Duration `envconfig:"GITHUB_REQUEST_TIMEOUT" default:"15s"`
}

// NewsConfig holds news worker settings
type NewsConfig struct {
	ConfigPath     string        `envconfig:"NEWS_CONFIG_PATH" default:"configs/news.yaml"`
	MaxEntries     int           `envconfig:"NEWS_MAX_ENTRIES_PER_FEED" default:"50"`
	MaxArticles    int           `envconfig:"NEWS_MAX_ARTICLES" default:"100"`
	RequestTimeout time.Duration `envconfig:"NEWS_REQUEST_TIMEOUT" default:"15s"`

	// LLM summarization (OpenAI-compatible chat completions endpoint)
	LLMEndpoint  string `envconfig:"LLM_ENDPOINT" default:""`
	LLMAPIKey    string `envconfig:"LLM_API_KEY" default:""`
	LLMModel     string `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMMaxTokens int    `envconfig:"LLM_MAX_TOKENS" default:"256"`
}

// SocialConfig holds social scraper settings
type SocialConfig struct {
	ConfigPath         string        `envconfig:"SOCIAL_CONFIG_PATH" default:"configs/social.yaml"`
	TwitterBearerToken string        `envconfig:"TWITTER_BEARER_TOKEN" default:""`
	TwitterMaxResults  int           `envconfig:"TWITTER_MAX_RESULTS" default:"50"`
	RedditClientID     string        `envconfig:"REDDIT_CLIENT_ID" default:""`
	RedditClientSecret string        `envconfig:"REDDIT_CLIENT_SECRET" default:""`
	RedditUserAgent    string        `envconfig:"REDDIT_USER_AGENT" default:"market-intel-social"`
	RedditPostLimit    int           `envconfig:"REDDIT_POST_LIMIT" default:"50"`
	RequestTimeout     time.Duration `envconfig:"SOCIAL_REQUEST_TIMEOUT" default:"15s"`
}

// ModelConfig holds hosted model scoring settings (sentiment, honeypot)
type ModelConfig struct {
	SentimentEndpoint string        `envconfig:"SENTIMENT_MODEL_ENDPOINT" default:""`
	SentimentAPIKey   string        `envconfig:"SENTIMENT_MODEL_API_KEY" default:""`
	SentimentBatch    int           `envconfig:"SENTIMENT_BATCH_SIZE" default:"32"`
	AssetMapPath      string        `envconfig:"ASSET_MAPPING_PATH" default:"configs/assets.yaml"`
	HoneypotEndpoint  string        `envconfig:"HONEYPOT_MODEL_ENDPOINT" default:""`
	HoneypotAPIKey    string        `envconfig:"HONEYPOT_MODEL_API_KEY" default:""`
	HoneypotBatch     int           `envconfig:"HONEYPOT_BATCH_SIZE" default:"20"`
	RequestTimeout    time.Duration `envconfig:"MODEL_REQUEST_TIMEOUT" default:"60s"`
}

// SlitherConfig holds static analysis worker settings
type SlitherConfig struct {
	Binary    string        `envconfig:"SLITHER_BINARY" default:"slither"`
	BatchSize int           `envconfig:"STATIC_ANALYSIS_BATCH_SIZE" default:"20"`
	Timeout   time.Duration `envconfig:"SLITHER_TIMEOUT" default:"120s"`
}

// AnalyticsConfig holds warehouse-derived analytics worker settings
type AnalyticsConfig struct {
	RankingConfigPath  string  `envconfig:"RANKING_CONFIG_PATH" default:"configs/ranking.yaml"`
	BridgesConfigPath  string  `envconfig:"BRIDGES_CONFIG_PATH" default:"configs/bridges.yaml"`
	NFTConfigPath      string  `envconfig:"NFT_CONFIG_PATH" default:"configs/nft.yaml"`
	ProtocolConfigPath string  `envconfig:"PROTOCOL_CONFIG_PATH" default:"configs/protocols.yaml"`
	OpenSeaAPIKey      string  `envconfig:"OPENSEA_API_KEY" default:""`
	OpenSeaBaseURL     string  `envconfig:"OPENSEA_BASE_URL" default:"https://api.opensea.io/api/v2"`
	LookbackDays       int     `envconfig:"ANALYTICS_LOOKBACK_DAYS" default:"1"`
	WhaleUSDThreshold  float64 `envconfig:"WHALE_USD_THRESHOLD" default:"1000000"`
	SmartMoneyScore    int     `envconfig:"SMART_MONEY_SCORE_THRESHOLD" default:"3"`
	EventBatchSize     int     `envconfig:"EVENTS_BATCH_SIZE" default:"1000"`
}

// AlertsConfig holds alert engine settings
type AlertsConfig struct {
	RulesPath        string   `envconfig:"ALERT_RULES_PATH" default:"configs/alerts.yaml"`
	SlackWebhookURL  string   `envconfig:"SLACK_WEBHOOK_URL" default:""`
	TelegramBotToken string   `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramChatID   string   `envconfig:"TELEGRAM_CHAT_ID" default:""`
	SummaryTables    []string `envconfig:"ALERT_SUMMARY_TABLES" default:""`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings every worker needs before touching the warehouse
func (c *Config) Validate() error {
	if c.Warehouse.ProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID is required")
	}
	if c.Warehouse.Dataset == "" {
		return fmt.Errorf("BQ_DATASET is required")
	}
	return nil
}

// TableRef returns the fully qualified BigQuery table identifier
func (c *WarehouseConfig) TableRef(table string) string {
	return fmt.Sprintf("%s.%s.%s", c.ProjectID, c.Dataset, table)
}

// DSN returns the PostgreSQL connection string for the run ledger
func (c *LedgerConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
