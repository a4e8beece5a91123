// Package telegram is a minimal Bot API client covering what the notifier
// and the subscription webhook need: sending text, sending a photo by file
// upload, and reply keyboards.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// requestTimeout bounds one outbound Bot API call. Deliveries run inside the
// notification fan-out and must never hold up the surrounding request.
const requestTimeout = 5 * time.Second

// Client talks to the Telegram Bot API for a single bot token.
type Client struct {
	apiURL string
	token  string
	http   *http.Client
}

// NewClient creates a Bot API client. apiURL is normally
// "https://api.telegram.org"; tests point it at a local server.
func NewClient(apiURL, token string) *Client {
	return &Client{
		apiURL: apiURL,
		token:  token,
		http:   &http.Client{Timeout: requestTimeout},
	}
}

// methodURL builds the endpoint URL for a Bot API method.
func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
}

// SendMessage sends a text message to a chat. markup may be nil.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *ReplyMarkup) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal sendMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// SendText sends a plain text message without any keyboard markup.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.SendMessage(ctx, chatID, text, nil)
}

// SendPhoto uploads a photo file with a caption to a chat. The image goes up
// as a multipart file, not a URL, so subscribers receive it even when the
// server is not publicly reachable.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoPath, caption string) error {
	f, err := os.Open(photoPath) //nolint:gosec // path produced by our own upload storage
	if err != nil {
		return fmt.Errorf("could not open photo: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("could not write chat_id field: %w", err)
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return fmt.Errorf("could not write caption field: %w", err)
	}

	part, err := mw.CreateFormFile("photo", filepath.Base(photoPath))
	if err != nil {
		return fmt.Errorf("could not create photo part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("could not copy photo data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("could not finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &buf)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

// do executes a request and checks both the HTTP status and the Bot API
// envelope.
func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return fmt.Errorf("request failed with status %d: unreadable response", resp.StatusCode)
	}
	if !api.OK {
		return fmt.Errorf("telegram API error %d: %s", api.ErrorCode, api.Description)
	}
	return nil
}
