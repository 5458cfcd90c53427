package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gamewatch/notifier/internal/domain"
)

// Mail is one templated message ready for the transport: a provider template
// id plus the dynamic data the template renders.
type Mail struct {
	TemplateID string
	Data       map[string]any
}

// Sender abstracts the outbound mail transport. Implementations must invoke
// the provider at most once per call and report failures instead of
// swallowing them; the pipeline treats those failures as non-fatal.
// Mocking this interface in tests gives full control over transport
// behaviour without real HTTP calls.
type Sender interface {
	Send(ctx context.Context, to string, m *Mail) error
}

// Templates maps each notification type to its provider template id.
type Templates map[domain.NotificationType]string

// Build renders a notification into a Mail. The template data always
// carries the game name and store type; type-specific fields come from the
// decoded payload.
func Build(n *domain.Notification, game *domain.Game, sourceType domain.SourceType, templates Templates) (*Mail, error) {
	templateID, ok := templates[n.Type]
	if !ok {
		return nil, fmt.Errorf("no mail template configured for %q", n.Type)
	}

	data := map[string]any{
		"gameName": game.Name,
		"store":    string(sourceType),
	}

	var payload map[string]any
	if err := json.Unmarshal(n.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode notification payload: %w", err)
	}
	for k, v := range payload {
		data[k] = v
	}

	return &Mail{TemplateID: templateID, Data: data}, nil
}
