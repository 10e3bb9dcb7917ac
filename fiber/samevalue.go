package fiber

import (
	"math"
	"reflect"
)

// SameValue compares a and b the way dependency lists and props are
// compared: NaN equals NaN, +0 and -0 differ, and maps, slices and funcs are
// equal only when they share identity.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && sameFloat(x, y)
	case float32:
		y, ok := b.(float32)
		return ok && sameFloat(float64(x), float64(y))
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func sameFloat(x, y float64) bool {
	if math.IsNaN(x) && math.IsNaN(y) {
		return true
	}
	if x == 0 && y == 0 {
		return math.Signbit(x) == math.Signbit(y)
	}
	return x == y
}

// areHookInputsEqual treats a nil list as always changed.
func areHookInputsEqual(next, prev []any) bool {
	if next == nil || prev == nil || len(next) != len(prev) {
		return false
	}
	for i := range next {
		if !SameValue(next[i], prev[i]) {
			return false
		}
	}
	return true
}
