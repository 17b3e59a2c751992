package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/taskloop/backend/internal/models"
)

func TestClientEnabledRequiresAllThreeKeys(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"complete", Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv", Subject: "mailto:ops@example.com"}, true},
		{"missing public", Config{VAPIDPrivateKey: "priv", Subject: "mailto:ops@example.com"}, false},
		{"missing private", Config{VAPIDPublicKey: "pub", Subject: "mailto:ops@example.com"}, false},
		{"missing subject", Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"}, false},
		{"empty", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.config).Enabled())
		})
	}
}

func TestClientSendDisabled(t *testing.T) {
	client := NewClient(Config{})

	err := client.Send(context.Background(), &models.PushSubscription{Endpoint: "https://push.example.com/x"}, Payload{Title: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientPublicKey(t *testing.T) {
	client := NewClient(Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv", Subject: "mailto:ops@example.com"})
	assert.Equal(t, "pub", client.PublicKey())
}
