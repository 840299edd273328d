package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// fallbackRegion resolves numbers submitted without a leading +. Travelers
// come from anywhere, so numbers already in international form are preferred
// and parsed as-is.
const fallbackRegion = "US"

func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, fallbackRegion)
	if err != nil {
		return ""
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
