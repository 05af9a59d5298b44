package event

import "github.com/mitchellh/mapstructure"

// Decode rebuilds a concrete event from a stored notification payload.
func Decode[T any](data map[string]any) (*T, error) {
	var ev T
	if err := mapstructure.Decode(data, &ev); err != nil {
		return nil, err
	}

	return &ev, nil
}
