package fiber

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/google/uuid"
)

type pendingPassiveEffects struct {
	unmount []*effect
	update  []*effect
}

// Root is one mounted tree and its host container.
type Root struct {
	id        string
	r         *Reconciler
	container Container

	current      *Fiber
	finishedWork *Fiber
	pendingLanes Lanes
	finishedLane Lane

	// lanes that must stay pending after finishedWork commits
	finishedUpdatedLanes Lanes

	pendingPassiveEffects pendingPassiveEffects
	passiveFlushScheduled bool

	callbackNode     *scheduler.Task
	callbackPriority Lane

	// lanes already waiting on each thenable
	pingCache map[Thenable]mapset.Set[Lane]

	mountScheduled bool
}

// CreateContainer allocates a root for container with an empty host root fiber.
func (r *Reconciler) CreateContainer(container Container) *Root {
	root := &Root{
		id:        uuid.NewString(),
		r:         r,
		container: container,
	}
	hostRoot := newFiber(TagHostRoot, Props{}, "")
	hostRoot.stateNode = root
	hostRoot.updateQueue = &rootQueue{shared: newUpdateQueue()}
	root.current = hostRoot
	return root
}

// UpdateContainer schedules element to become root's tree. The first call
// renders at the sync lane; later ones at the ambient lane.
func (r *Reconciler) UpdateContainer(element any, root *Root) {
	lane := SyncLane
	if root.mountScheduled {
		lane = r.requestUpdateLane()
	}
	root.mountScheduled = true

	q := root.current.updateQueue.(*rootQueue)
	q.shared.enqueue(newUpdate(element, lane))
	r.logger.Debug().Str("root", root.id).Stringer("lane", lane).Msg("root update")
	r.scheduleUpdateOnFiber(root.current, lane)
}

func (root *Root) Render(element any) { root.r.UpdateContainer(element, root) }

func (root *Root) Unmount() { root.r.UpdateContainer(nil, root) }

func (root *Root) ID() string { return root.id }

func (root *Root) Container() Container { return root.container }

// Current is the committed host root fiber.
func (root *Root) Current() *Fiber { return root.current }

func (root *Root) PendingLanes() Lanes { return root.pendingLanes }
