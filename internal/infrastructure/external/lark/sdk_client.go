package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark client configuration
type Config struct {
	AppID     string
	AppSecret string
}

// Enabled reports whether credentials were configured
func (c Config) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// SDKClient wraps the Lark SDK client
type SDKClient struct {
	client *lark.Client
	appID  string
	logger *zap.Logger
}

// NewSDKClient creates a new Lark SDK client
func NewSDKClient(cfg Config, logger *zap.Logger) *SDKClient {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &SDKClient{
		client: client,
		appID:  cfg.AppID,
		logger: logger,
	}
}

// GetClient returns the underlying Lark SDK client
func (c *SDKClient) GetClient() *lark.Client {
	return c.client
}

// GetAppID returns the app ID
func (c *SDKClient) GetAppID() string {
	return c.appID
}
