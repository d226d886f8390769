package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

// httpGet issues a GET request bound to the command context.
func httpGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

// getAndPrint fetches a JSON endpoint and pretty-prints the response body.
func getAndPrint(cmd *cobra.Command, url string) error {
	resp, err := httpGet(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return bodyError(resp.StatusCode, body)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

// responseError reads an error response body and converts it to an error.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return bodyError(resp.StatusCode, body)
}

func bodyError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("server returned %d: %s", status, errResp.Error)
	}
	return fmt.Errorf("server returned %d: %s", status, bytes.TrimSpace(body))
}
