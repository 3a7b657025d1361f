package handlers

import (
	"encoding/json"
	"fmt"

	"tradelink/internal/models"
	"tradelink/pkg/logger"

	"github.com/streadway/amqp"
)

// ListingEventHandler returns a consumer callback that records listing events in the log.
func ListingEventHandler(log logger.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event models.ListingEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Warn("discarding malformed listing event", map[string]interface{}{
				"routing_key": msg.RoutingKey,
				"error":       err.Error(),
			})
			return fmt.Errorf("failed to decode listing event: %w", err)
		}

		log.Info("listing event received", map[string]interface{}{
			"event":         event.Type,
			"listing_id":    event.ListingID,
			"seller_id":     event.SellerID,
			"category_type": event.CategoryType,
			"occurred_at":   event.OccurredAt,
		})
		return nil
	}
}
