package config

// normalize turns YAML sequences whose items share one scalar type into
// typed slices, so that pushing a list onto a list extends it instead of
// nesting it. Mixed sequences stay []any.
func normalize(v any) any {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return v
	}

	switch items[0].(type) {
	case int:
		return typed[int](items)
	case float64:
		return typed[float64](items)
	case string:
		return typed[string](items)
	case bool:
		return typed[bool](items)
	default:
		return v
	}
}

func typed[T any](items []any) any {
	out := make([]T, 0, len(items))

	for _, item := range items {
		t, ok := item.(T)
		if !ok {
			return items
		}

		out = append(out, t)
	}

	return out
}
