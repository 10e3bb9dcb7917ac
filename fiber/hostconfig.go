package fiber

type (
	Instance  = any
	Container = any
)

// UpdatePayload alternates property names and values. A "style" value is a
// map holding only the changed style properties; text nodes receive
// ["content", text].
type UpdatePayload []any

// HostConfig is what a rendering target implements. The reconciler calls it
// from the scheduler's thread only.
type HostConfig interface {
	CreateInstance(typ string, props Props) Instance
	CreateTextInstance(content string) Instance
	AppendInitialChild(parent Instance, child Instance)

	AppendChildToContainer(child Instance, container Container)
	InsertChildToContainer(child Instance, container Container, before Instance)
	RemoveChild(child Instance, container Container)

	PrepareUpdate(instance Instance, typ string, oldProps, newProps Props) UpdatePayload
	CommitUpdate(instance Instance, payload UpdatePayload)

	HideInstance(instance Instance)
	UnhideInstance(instance Instance, props Props)
	HideTextInstance(instance Instance)
	UnhideTextInstance(instance Instance, text string)
}
