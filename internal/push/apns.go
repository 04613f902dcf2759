package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNsGateway sends through Apple Push Notification service using
// token-based authentication.
type APNsGateway struct {
	client *apns2.Client
	topic  string
}

// NewAPNsGateway loads the signing key from keyFile and builds a
// token-authenticated client.
func NewAPNsGateway(keyFile, keyID, teamID, topic string, production bool) (*APNsGateway, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsGateway{client: client, topic: topic}, nil
}

func (g *APNsGateway) Send(ctx context.Context, msg Message) error {
	p := payload.NewPayload().
		AlertTitle(msg.Title).
		AlertBody(msg.Body)
	if msg.Sound != "" {
		p = p.Sound(msg.Sound)
	}
	for k, v := range msg.Data {
		p = p.Custom(k, v)
	}

	n := &apns2.Notification{
		DeviceToken: msg.To,
		Topic:       g.topic,
		Payload:     p,
		Priority:    apns2.PriorityHigh,
	}

	res, err := g.client.PushWithContext(ctx, n)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}
	return nil
}
