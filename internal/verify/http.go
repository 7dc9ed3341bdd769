package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func readBody(resp *http.Response) (string, error) {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}
	return string(b), nil
}

// parseFlatJSONEnvelope extracts three string-valued top-level fields from
// a JSON object, tolerating the result field being a JSON string OR a
// nested structure (Etherscan and its forks aren't perfectly consistent
// about which).
func parseFlatJSONEnvelope(body string, statusKey, messageKey, resultKey string) (status, message, result string, err error) {
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return "", "", "", fmt.Errorf("decoding response: %w", err)
	}
	status = stringField(decoded[statusKey])
	message = stringField(decoded[messageKey])
	result = stringField(decoded[resultKey])
	return status, message, result, nil
}

func stringField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
