package bot

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsNotModified(t *testing.T) {
	apiErr := &tgbotapi.Error{
		Code:    400,
		Message: "Bad Request: message is not modified: specified new message content and reply markup are exactly the same as a current content and reply markup of the message",
	}
	assert.True(t, isNotModified(apiErr))
	assert.True(t, isNotModified(fmt.Errorf("edit: %w", apiErr)))

	assert.False(t, isNotModified(nil))
	assert.False(t, isNotModified(&tgbotapi.Error{Code: 400, Message: "Bad Request: message to edit not found"}))
	assert.False(t, isNotModified(errors.New("connection reset by peer")))
}
