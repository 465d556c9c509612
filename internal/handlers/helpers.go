package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nityakart/delivery-shop/internal/logging"
	"github.com/nityakart/delivery-shop/internal/mykafka"
)

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// publish sends an event best-effort: failures are logged and never reach
// the client.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "topic", topic, "error", err)
	}
}
