package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const logJob = "product-catalog"

var httpClient = &http.Client{Timeout: 5 * time.Second}

// sendLog ships a log entry to the remote aggregator (Loki push format) in
// the background. Shipping is skipped when REMOTE_LOG_HTTP_URI is unset and
// never affects the caller.
func sendLog(level, message string, attrs []slog.Attr) {
	go func() {
		remoteURI := os.Getenv("REMOTE_LOG_HTTP_URI")
		if remoteURI == "" {
			return
		}

		body, err := json.Marshal(buildLogEntry(level, message, attrs))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal remote log entry: %v\n", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, remoteURI, bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create remote log request: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "Remote log returned status %d\n", resp.StatusCode)
		}
	}()
}

func buildLogEntry(level, message string, attrs []slog.Attr) map[string]any {
	line := map[string]any{
		"level":   level,
		"message": message,
		"time":    time.Now().Format(time.RFC3339),
	}
	for _, attr := range attrs {
		line[attr.Key] = attr.Value.Any()
	}
	raw, _ := json.Marshal(line)

	return map[string]any{
		"streams": []map[string]any{
			{
				"stream": map[string]string{"level": level, "job": logJob},
				"values": [][]string{
					{fmt.Sprintf("%d", time.Now().UnixNano()), string(raw)},
				},
			},
		},
	}
}
