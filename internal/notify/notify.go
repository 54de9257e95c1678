// Package notify carries outbound SMS notifications from the API to the
// bridge. The API enqueues, the worker delivers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindSessionMessage Kind = "session.message"
	KindSessionClosed  Kind = "session.closed"
	KindUserWelcome    Kind = "user.welcome"
)

var ErrNoRecipient = errors.New("notification has no phone number")

type Notification struct {
	Kind      Kind   `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Phone     string `json:"phone"`
	Text      string `json:"text"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

func (n Notification) Validate() error {
	if n.Phone == "" {
		return ErrNoRecipient
	}
	switch n.Kind {
	case KindSessionMessage, KindSessionClosed, KindUserWelcome:
		return nil
	}
	return fmt.Errorf("unknown notification kind %q", n.Kind)
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Values flattens n into stream fields.
func (n Notification) Values() map[string]any {
	return map[string]any{
		"kind":      string(n.Kind),
		"sessionId": n.SessionID,
		"userId":    n.UserID,
		"phone":     n.Phone,
		"text":      n.Text,
		"imageUrl":  n.ImageURL,
	}
}

func FromValues(values map[string]any) (Notification, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return Notification{}, err
	}
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}
