package fiber

import (
	"strings"

	"github.com/delaneyj/fiberparty/scheduler"
)

// Lane is one priority class. Lanes is any OR-combination of them; a smaller
// bit is more urgent.
type Lane uint32

type Lanes = Lane

const (
	NoLane              Lane = 0
	SyncLane            Lane = 0b00001
	InputContinuousLane Lane = 0b00010
	DefaultLane         Lane = 0b00100
	TransitionLane      Lane = 0b01000
	IdleLane            Lane = 0b10000

	NoLanes Lanes = 0
)

func mergeLanes(a, b Lanes) Lanes { return a | b }

func isSubsetOfLanes(set Lanes, subset Lanes) bool { return set&subset == subset }

func getHighestPriorityLane(lanes Lanes) Lane { return lanes & -lanes }

func laneToSchedulerPriority(lanes Lanes) scheduler.Priority {
	switch getHighestPriorityLane(lanes) {
	case SyncLane:
		return scheduler.ImmediatePriority
	case InputContinuousLane:
		return scheduler.UserBlockingPriority
	case DefaultLane:
		return scheduler.NormalPriority
	default:
		return scheduler.IdlePriority
	}
}

func schedulerPriorityToLane(p scheduler.Priority) Lane {
	switch p {
	case scheduler.ImmediatePriority:
		return SyncLane
	case scheduler.UserBlockingPriority:
		return InputContinuousLane
	case scheduler.NormalPriority:
		return DefaultLane
	case scheduler.IdlePriority:
		return IdleLane
	default:
		return NoLane
	}
}

func markRootUpdated(root *Root, lane Lane) {
	root.pendingLanes = mergeLanes(root.pendingLanes, lane)
}

func markRootFinished(root *Root, lane Lane) {
	root.pendingLanes &^= lane
}

// markRootSuspended drops a lane that cannot finish until a ping re-marks it.
func markRootSuspended(root *Root, lane Lane) {
	root.pendingLanes &^= lane
}

var laneNames = []struct {
	lane Lane
	name string
}{
	{SyncLane, "sync"},
	{InputContinuousLane, "input-continuous"},
	{DefaultLane, "default"},
	{TransitionLane, "transition"},
	{IdleLane, "idle"},
}

func (l Lane) String() string {
	if l == NoLane {
		return "none"
	}
	var names []string
	for _, ln := range laneNames {
		if l&ln.lane != 0 {
			names = append(names, ln.name)
		}
	}
	return strings.Join(names, "|")
}
