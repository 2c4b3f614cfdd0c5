package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// decodeResponse reads an API response, surfacing the server's error
// message on non-200 statuses.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
