package telegramimpl

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"flood control", &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, true},
		{"server error", &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}, true},
		{"bad markup", &tgbotapi.Error{Code: 400, Message: "can't parse entities"}, false},
		{"forbidden", &tgbotapi.Error{Code: 403, Message: "bot was blocked by the user"}, false},
		{"network", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
