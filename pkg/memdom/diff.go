package memdom

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/fiber"
)

// DiffProps computes the update payload turning oldProps into newProps.
// Removed props become "". children and event handlers (on followed by an
// upper-case letter) are not diffed. style is diffed key by key and only the
// changed keys are sent.
func DiffProps(oldProps, newProps fiber.Props) fiber.UpdatePayload {
	var payload fiber.UpdatePayload
	for _, k := range unionKeys(oldProps, newProps) {
		if k == "children" || isEventProp(k) {
			continue
		}
		if k == "style" {
			if changed := diffStyle(styleOf(oldProps[k]), styleOf(newProps[k])); len(changed) > 0 {
				payload = append(payload, k, changed)
			}
			continue
		}
		oldV, newV := oldProps[k], newProps[k]
		if fiber.SameValue(oldV, newV) {
			continue
		}
		if newV == nil {
			newV = ""
		}
		payload = append(payload, k, newV)
	}
	return payload
}

func diffStyle(oldStyle, newStyle map[string]string) map[string]string {
	changed := map[string]string{}
	for _, k := range unionKeys(oldStyle, newStyle) {
		if oldStyle[k] != newStyle[k] {
			changed[k] = newStyle[k]
		}
	}
	return changed
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := mapset.NewThreadUnsafeSet[string]()
	for k := range a {
		keys.Add(k)
	}
	for k := range b {
		keys.Add(k)
	}
	out := keys.ToSlice()
	slices.Sort(out)
	return out
}

func isEventProp(k string) bool {
	return len(k) > 2 && k[0] == 'o' && k[1] == 'n' && k[2] >= 'A' && k[2] <= 'Z'
}

// styleOf accepts map[string]string or map[string]any style values.
func styleOf(v any) map[string]string {
	switch s := v.(type) {
	case map[string]string:
		return s
	case map[string]any:
		out := make(map[string]string, len(s))
		for k, val := range s {
			out[k] = fmt.Sprint(val)
		}
		return out
	}
	return nil
}
