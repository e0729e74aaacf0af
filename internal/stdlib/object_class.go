package stdlib

import (
	"fmt"
	"sort"

	"nimbus/internal/object"
	"nimbus/internal/vm"
)

// registerObjectClass builds spec.md §6's Object native class: a
// namespace of static methods only (no constructor, no instances),
// reachable as Object.keys/values/entries per §4.4.2's rule that a
// Class's property lookup searches its own native/closure tables
// directly.
func registerObjectClass(v *vm.VM) {
	heap := v.Heap()
	cls := heap.NewClass("Object")
	cls.IsNative = true

	cls.Natives["keys"] = heap.NewNative("keys", func(receiver object.Value, args []object.Value) (object.Value, error) {
		fields, err := objectFields(args)
		if err != nil {
			return nil, err
		}
		keys := sortedKeys(fields)
		elems := make([]object.Value, len(keys))
		for i, k := range keys {
			elems[i] = heap.NewString(k)
		}
		return heap.NewList(elems), nil
	})

	cls.Natives["values"] = heap.NewNative("values", func(receiver object.Value, args []object.Value) (object.Value, error) {
		fields, err := objectFields(args)
		if err != nil {
			return nil, err
		}
		keys := sortedKeys(fields)
		elems := make([]object.Value, len(keys))
		for i, k := range keys {
			elems[i] = fields[k]
		}
		return heap.NewList(elems), nil
	})

	cls.Natives["entries"] = heap.NewNative("entries", func(receiver object.Value, args []object.Value) (object.Value, error) {
		fields, err := objectFields(args)
		if err != nil {
			return nil, err
		}
		keys := sortedKeys(fields)
		elems := make([]object.Value, len(keys))
		for i, k := range keys {
			elems[i] = heap.NewList([]object.Value{heap.NewString(k), fields[k]})
		}
		return heap.NewList(elems), nil
	})

	v.Globals()["Object"] = cls
}

// objectFields extracts the field table a static Object method should
// iterate: the sole argument must be an Instance or NativeInstance.
func objectFields(args []object.Value) (map[string]object.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected an object argument")
	}
	switch v := args[0].(type) {
	case *object.Instance:
		return v.Fields, nil
	case *object.NativeInstance:
		return v.Fields, nil
	default:
		return nil, fmt.Errorf("expected an object, got %s", object.TypeOf(args[0]))
	}
}

// sortedKeys gives keys/values/entries a deterministic order; the data
// model's field table is an unordered map, so any stable order satisfies
// it — lexical order makes output reproducible for scripts and tests.
func sortedKeys(fields map[string]object.Value) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
