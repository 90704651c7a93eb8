package filter

// Codec serializes items to the field names expressions refer to
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Apply returns the items matching f. Each item is round-tripped through
// codec, so expressions see the remote field names (full_name, is_private).
func Apply[T any](f CompiledFilter, codec Codec, items []T) ([]T, error) {
	var matched []T
	for i, item := range items {
		env, err := toEnv(codec, item)
		if err != nil {
			return nil, &ConversionError{Index: i, Err: err}
		}
		if f.Evaluate(env) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func toEnv(codec Codec, item any) (map[string]any, error) {
	data, err := codec.Marshal(item)
	if err != nil {
		return nil, err
	}
	env := make(map[string]any)
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env, nil
}
