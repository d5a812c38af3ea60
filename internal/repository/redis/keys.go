package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "matchday:v1"

func KeyFixtures() string {
	return ns + ":fixtures:all"
}

func KeyUpcomingFixtures() string {
	return ns + ":fixtures:upcoming"
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyIdemOrder(audienceID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:orders:%s:%s", ns, audienceID, idemKey)
}

func ChannelFixturesChanged() string {
	return ns + ":fixtures:changed"
}
