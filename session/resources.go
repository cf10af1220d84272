package session

import "github.com/paiml/ruchy-sub007/value"

// pointerSize approximates a native pointer's width for the payload
// estimate (§5.3); the exact width doesn't matter for a coarse proxy,
// only that lists/objects scale with element count.
const pointerSize = 8

// EstimateHeapBytes sums the shallow size of every top-level binding
// plus its per-kind payload: string byte length, N*pointerSize for
// lists, and N*(key bytes + pointerSize) for objects.
func EstimateHeapBytes(env *value.Env) int64 {
	var total int64
	for _, name := range env.TopLevelNames() {
		cell, ok := env.LookUp(name)
		if !ok {
			continue
		}
		total += valuePayloadBytes(cell.Value)
	}
	return total
}

func valuePayloadBytes(v value.Value) int64 {
	const shallow = 32
	switch v.Kind {
	case value.KindString:
		return shallow + int64(len(v.Str))
	case value.KindList, value.KindTuple:
		items := v.List
		if v.Kind == value.KindTuple {
			items = v.Tuple
		}
		total := shallow + int64(len(items))*pointerSize
		for _, it := range items {
			total += valuePayloadBytes(it)
		}
		return total
	case value.KindObject:
		total := shallow
		for _, k := range v.Keys {
			total += int64(len(k)) + pointerSize
			total += valuePayloadBytes(v.Fields[k])
		}
		return total
	case value.KindEnumVariant:
		total := shallow
		for _, p := range v.Payload {
			total += valuePayloadBytes(p)
		}
		return total
	}
	return shallow
}

// EstimateStackDepth is the coarse proxy floor(bindings/10) + 1 — real
// recursion is bounded by Context's explicit depth counter, not this.
func EstimateStackDepth(env *value.Env) int {
	return len(env.TopLevelNames())/10 + 1
}
