package testutil

import (
	"encoding/json"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/hrpanel/hrpanel-api/internal/telegram"
)

// TestBotToken is the bot token used to sign init data in tests
const TestBotToken = "123456:test-bot-token"

// SignedInitData builds a Mini-App init data string for user, signed with TestBotToken
func SignedInitData(t *testing.T, user telegram.User) string {
	t.Helper()

	userJSON, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("failed to marshal telegram user: %v", err)
	}

	values := url.Values{}
	values.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("user", string(userJSON))

	return telegram.Sign(values, TestBotToken)
}
