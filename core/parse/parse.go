package parse

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// As decodes content into a value of type T.
//
// The content is first unmarshaled strictly. When that fails, the string is
// repaired with jsonrepair (single quotes, unquoted keys, trailing commas and
// similar defects) and unmarshaled once more. The returned error carries both
// failure causes when neither attempt succeeds.
//
// Example:
//
//	report, err := parse.As[map[string]any](`{'code': 3000, result: 'ok',}`)
func As[T any](content string) (T, error) {
	var result T

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
	}

	return result, nil
}
