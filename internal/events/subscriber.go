package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"delivery-service/internal/engine"
	"delivery-service/internal/models"
	"delivery-service/internal/repository"
)

// TenantCreatedEvent is the event published when a tenant is created.
type TenantCreatedEvent struct {
	EventType    string    `json:"event_type"`
	TenantID     string    `json:"tenant_id"`
	BusinessName string    `json:"business_name"`
	Slug         string    `json:"slug"`
	Email        string    `json:"email"`
	Country      string    `json:"country,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Subscriber handles NATS event subscriptions for the delivery service.
type Subscriber struct {
	conn   *nats.Conn
	repo   *repository.ConfigRepository
	logger *logrus.Entry
}

// NewSubscriber creates a new event subscriber.
func NewSubscriber(repo *repository.ConfigRepository, logger *logrus.Logger) (*Subscriber, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("delivery-service-subscriber"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Subscriber{
		conn:   conn,
		repo:   repo,
		logger: logger.WithField("component", "events.subscriber"),
	}, nil
}

// Start begins listening for events.
func (s *Subscriber) Start() error {
	_, err := s.conn.Subscribe("tenant.created", func(msg *nats.Msg) {
		s.handleTenantCreated(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to tenant.created: %w", err)
	}

	s.logger.Info("Subscribed to tenant.created events for delivery config provisioning")
	return nil
}

// handleTenantCreated provisions a default delivery config and global
// settings for a new tenant. Existing documents are never overwritten.
func (s *Subscriber) handleTenantCreated(msg *nats.Msg) {
	var event TenantCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal tenant.created event")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": event.TenantID,
		"country":   event.Country,
	}).Info("Received tenant.created event, provisioning delivery config")

	if event.TenantID == "" {
		s.logger.Warn("No tenant id in tenant.created event, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.repo.GetConfig(ctx, event.TenantID); errors.Is(err, repository.ErrNotFound) {
		if err := s.repo.SaveConfig(ctx, event.TenantID, models.DefaultConfig()); err != nil {
			s.logger.WithError(err).Error("Failed to provision default delivery config")
			return
		}
	}

	if _, err := s.repo.GetSettings(ctx, event.TenantID); errors.Is(err, repository.ErrNotFound) {
		settings := engine.GlobalSettings{
			CutoffTime:            engine.DefaultCutoffTime,
			ClosedDays:            engine.DayList{"sat", "sun"},
			CourierNoDeliveryDays: engine.DayList{"sat", "sun"},
			BankHolidayCountry:    countryCode(event.Country),
		}
		if err := s.repo.SaveSettings(ctx, event.TenantID, settings); err != nil {
			s.logger.WithError(err).Error("Failed to provision default delivery settings")
			return
		}
	}

	s.logger.WithField("tenant_id", event.TenantID).Info("Provisioned delivery config for tenant")
}

// countryCode keeps two-letter codes as-is and maps the common country names
// the onboarding flow sends; anything else disables bank holidays.
func countryCode(country string) string {
	if len(country) == 2 {
		return country
	}
	switch country {
	case "United States", "USA":
		return "US"
	case "United Kingdom":
		return "GB"
	case "Canada":
		return "CA"
	case "Australia":
		return "AU"
	case "Ireland":
		return "IE"
	case "New Zealand":
		return "NZ"
	case "Germany":
		return "DE"
	case "France":
		return "FR"
	default:
		return ""
	}
}

// Close closes the subscriber connection.
func (s *Subscriber) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
