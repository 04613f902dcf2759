package push

import (
	"context"
	"strings"
)

// Message is one outbound push notification
type Message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// Gateway delivers a single push message. Implementations do not retry;
// a failed send is the caller's to log and move past.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// Router picks a concrete gateway by token shape: Expo tokens carry the
// ExponentPushToken prefix, everything else is treated as a raw APNs
// device token.
type Router struct {
	Expo Gateway
	APNs Gateway
}

func (r *Router) Send(ctx context.Context, msg Message) error {
	if strings.HasPrefix(msg.To, "ExponentPushToken") {
		return r.Expo.Send(ctx, msg)
	}
	return r.APNs.Send(ctx, msg)
}
