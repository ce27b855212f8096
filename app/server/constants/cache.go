package constants

import "time"

const (
	CacheKeyAdministrator = "waitlist:admin:%s"
)

const (
	CacheExpireAdministrator = 5 * time.Minute
)
