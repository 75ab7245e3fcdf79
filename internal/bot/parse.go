package bot

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/spec-kit/link-shortener/internal/service"
)

var urlPattern = regexp.MustCompile(`(https?://)?[a-zA-Z0-9.-]+\.[a-zA-Z0-9]{2,}(/\S*)?`)

// ExtractFirstURL finds the first candidate URL in free text and normalizes
// it. Bare hostnames are accepted and get an http scheme.
func ExtractFirstURL(text string) (string, bool) {
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		normalized, err := service.NormalizeTarget(candidate)
		if err == nil {
			return normalized, true
		}
	}
	return "", false
}

// TelegramUserUUID maps a Telegram user id onto a deterministic UUID so bot
// submissions carry a stable creator id without a registered account.
func TelegramUserUUID(userID int64) uuid.UUID {
	var raw [16]byte
	id := uint64(userID)
	for i := 0; i < 8; i++ {
		raw[i] = byte(id >> (8 * (7 - i)))
	}
	return uuid.UUID(raw)
}
