package fiber

type Flags uint32

const (
	NoFlags       Flags = 0
	Placement     Flags = 1 << 1
	Update        Flags = 1 << 2
	PassiveEffect Flags = 1 << 3
	ChildDeletion Flags = 1 << 4
	RefEffect     Flags = 1 << 5
	Visibility    Flags = 1 << 6
	DidCapture    Flags = 1 << 7
	ShouldCapture Flags = 1 << 12

	MutationMask = Placement | Update | ChildDeletion | RefEffect | Visibility
	PassiveMask  = PassiveEffect | ChildDeletion
)

// HookFlags tag effect records.
type HookFlags uint8

const (
	HookHasEffect HookFlags = 0b0001
	HookPassive   HookFlags = 0b0010
	HookLayout    HookFlags = 0b0100
)

type WorkTag uint8

const (
	TagFunctionComponent WorkTag = iota
	TagHostRoot
	TagHostComponent
	TagHostText
	TagFragment
	TagContextProvider
	TagSuspense
	TagOffscreen
)

func (t WorkTag) String() string {
	switch t {
	case TagFunctionComponent:
		return "function"
	case TagHostRoot:
		return "root"
	case TagHostComponent:
		return "host"
	case TagHostText:
		return "text"
	case TagFragment:
		return "fragment"
	case TagContextProvider:
		return "provider"
	case TagSuspense:
		return "suspense"
	case TagOffscreen:
		return "offscreen"
	default:
		return "unknown"
	}
}
