package scheduler

import (
	"math"
	"time"
)

type Priority uint8

const (
	NoPriority Priority = iota
	ImmediatePriority
	UserBlockingPriority
	NormalPriority
	LowPriority
	IdlePriority
)

const (
	immediateTimeout    = -1 * time.Millisecond
	userBlockingTimeout = 250 * time.Millisecond
	normalTimeout       = 5 * time.Second
	lowTimeout          = 10 * time.Second
	idleTimeout         = time.Duration(math.MaxInt64)
)

func (p Priority) timeout() time.Duration {
	switch p {
	case ImmediatePriority:
		return immediateTimeout
	case UserBlockingPriority:
		return userBlockingTimeout
	case LowPriority:
		return lowTimeout
	case IdlePriority:
		return idleTimeout
	default:
		return normalTimeout
	}
}

func (p Priority) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "none"
	}
}
