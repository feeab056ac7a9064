package events

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var (
	publisher     *Publisher
	publisherOnce sync.Once
	publisherMu   sync.RWMutex
)

// ConfigEvent is the payload published on delivery configuration changes.
type ConfigEvent struct {
	EventType string    `json:"event_type"`
	TenantID  string    `json:"tenant_id"`
	ProfileID string    `json:"profile_id,omitempty"`
	RuleID    string    `json:"rule_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits delivery configuration events over NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// InitPublisher initializes the singleton NATS publisher.
func InitPublisher(logger *logrus.Logger) error {
	var initErr error
	publisherOnce.Do(func() {
		natsURL := os.Getenv("NATS_URL")
		if natsURL == "" {
			logger.Warn("NATS_URL not set, event publishing disabled")
			return
		}

		conn, err := nats.Connect(natsURL,
			nats.Name("delivery-service"),
			nats.ReconnectWait(2*time.Second),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			initErr = fmt.Errorf("failed to connect to NATS: %w", err)
			return
		}

		publisherMu.Lock()
		publisher = &Publisher{
			conn:   conn,
			logger: logger.WithField("component", "events.publisher"),
		}
		publisherMu.Unlock()

		logger.Info("NATS events publisher initialized for delivery-service")
	})
	return initErr
}

// GetPublisher returns the singleton publisher instance, or nil when event
// publishing is disabled.
func GetPublisher() *Publisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// PublishConfigUpdated publishes a delivery.config.updated event.
func (p *Publisher) PublishConfigUpdated(tenantID, profileID, ruleID string) {
	p.publish("delivery.config.updated", ConfigEvent{
		EventType: "delivery.config.updated",
		TenantID:  tenantID,
		ProfileID: profileID,
		RuleID:    ruleID,
		Timestamp: time.Now().UTC(),
	})
}

// PublishProfileActivated publishes a delivery.profile.activated event.
func (p *Publisher) PublishProfileActivated(tenantID, profileID string) {
	p.publish("delivery.profile.activated", ConfigEvent{
		EventType: "delivery.profile.activated",
		TenantID:  tenantID,
		ProfileID: profileID,
		Timestamp: time.Now().UTC(),
	})
}

// PublishSettingsUpdated publishes a delivery.settings.updated event.
func (p *Publisher) PublishSettingsUpdated(tenantID string) {
	p.publish("delivery.settings.updated", ConfigEvent{
		EventType: "delivery.settings.updated",
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) publish(subject string, event ConfigEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to marshal event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
	}
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the publisher connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
