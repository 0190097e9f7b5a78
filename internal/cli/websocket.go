package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"github.com/coderunr/judgeproxy/internal/types"
)

// executeWatch runs one execution over the status stream, printing every
// judge status as it arrives and the classified result at the end.
func executeWatch(ctx context.Context, out io.Writer, baseURL string, request types.ExecutionRequest, verbose bool) error {
	wsURL, err := convertToWebSocketURL(baseURL)
	if err != nil {
		return fmt.Errorf("failed to convert URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"/api/v1/connect", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}
	defer conn.Close()

	if verbose {
		fmt.Fprintf(out, "Connected to WebSocket: %s\n", wsURL+"/api/v1/connect")
	}

	// Unblock the reader on interrupt
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(types.WebSocketMessage{Type: "init", Payload: request}); err != nil {
		return fmt.Errorf("failed to send execute request: %w", err)
	}

	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)

	for {
		var msg types.WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return fmt.Errorf("connection closed before a result was received")
			}
			return fmt.Errorf("WebSocket error: %w", err)
		}

		switch msg.Type {
		case "status":
			yellow.Fprintf(out, "[%d] %s\n", msg.Attempt, msg.Data)

		case "result":
			raw, err := json.Marshal(msg.Payload)
			if err != nil {
				return fmt.Errorf("failed to read result: %w", err)
			}
			var result types.ExecutionResult
			if err := json.Unmarshal(raw, &result); err != nil {
				return fmt.Errorf("failed to read result: %w", err)
			}
			printResult(out, result)
			return nil

		case "error":
			red.Fprintf(out, "Error: %s\n", msg.Error)
			return fmt.Errorf("execution failed with status %d: %s", msg.Code, msg.Error)

		default:
			if verbose {
				fmt.Fprintf(out, "Unknown message type: %s\n", msg.Type)
			}
		}
	}
}

func convertToWebSocketURL(httpURL string) (string, error) {
	u, err := url.Parse(httpURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}

	return u.String(), nil
}
