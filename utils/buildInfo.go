package utils

import (
	"fmt"
	"time"
)

var (
	Version        = "dev"
	CommitHash     = "n/a"
	BuildTime      = "n/a"
	StartTimestamp = time.Now()
)

func BuildFullVersion() string {
	return fmt.Sprintf("%s-%s (%s)", Version, CommitHash, BuildTime)
}
