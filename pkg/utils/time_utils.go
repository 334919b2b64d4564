package utils

import "time"

func NowUnixSeconds() int64 { return time.Now().Unix() }
