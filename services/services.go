package services

import (
	"fmt"
	"net/http"

	"estatepro/config"
	"estatepro/database/kv"
	"estatepro/services/gateway"
	"estatepro/services/negotiation"
	"estatepro/services/payment"
	"estatepro/services/storage"

	"go.uber.org/zap"
)

// Stack is everything the HTTP server and the CLI need to drive negotiations.
type Stack struct {
	Store        kv.Store
	Gateway      *gateway.Client
	Orchestrator *negotiation.Orchestrator
	close        func() error
}

// Close releases the state store connection.
func (s *Stack) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewStack builds the negotiation stack from configuration. Payment
// verification and image upload are left out when their credentials are
// not configured.
func NewStack(cfg config.Config, logger *zap.Logger) (*Stack, error) {
	stack := &Stack{}

	switch cfg.StoreBackend {
	case "redis":
		client, err := kv.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		stack.Store = kv.NewRedisStore(client, "estatepro:")
		stack.close = client.Close
	default:
		stack.Store = kv.NewMemoryStore()
	}

	stack.Gateway = gateway.NewClient(cfg.GatewayBaseURL, &http.Client{Timeout: cfg.GatewayTimeout}, logger.Named("gateway"))

	var payments negotiation.PaymentVerifier
	if cfg.StripeKey != "" {
		payments = payment.NewStripeVerifier(cfg.StripeKey, logger.Named("payment"))
	} else {
		logger.Info("STRIPE_KEY not set, payment methods are not verified")
	}

	var images negotiation.ImageUploader
	if cfg.CloudinaryCloudName != "" {
		store, err := storage.NewImageStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, logger.Named("storage"))
		if err != nil {
			_ = stack.Close()
			return nil, fmt.Errorf("failed to initialize image storage: %w", err)
		}
		images = store
	} else {
		logger.Info("Cloudinary not configured, request images are forwarded without upload")
	}

	state := negotiation.NewStateStore(stack.Store, cfg.SnapshotTTL, cfg.SessionTTL, cfg.InFlightTTL)
	stack.Orchestrator = negotiation.NewOrchestrator(stack.Gateway, state, payments, images, logger.Named("negotiation"),
		negotiation.Options{EnforceRankingCap: cfg.RankingCapEnforced})
	return stack, nil
}
