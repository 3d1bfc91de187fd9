package models

import "fmt"

// scanString normalizes driver values for string-backed enum columns
func scanString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}

