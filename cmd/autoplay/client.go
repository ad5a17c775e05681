package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/wricardo/snake-game-server/game/engine"
	"github.com/wricardo/snake-game-server/game/service"
)

// APIError is a non-2xx answer from the game server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the REST API. Its cookie jar carries the session key
// from IssueKey to the winning move.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// IssueKey asks the server to derive and store a key for count
func (c *Client) IssueKey(ctx context.Context, count int64) error {
	q := url.Values{"count": {strconv.FormatInt(count, 10)}}
	return c.do(ctx, http.MethodGet, "/snake?"+q.Encode(), nil, nil)
}

// Start begins a game on configID; empty selects the server default
func (c *Client) Start(ctx context.Context, configID string) (*engine.Snapshot, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var snap engine.Snapshot
	if err := c.do(ctx, http.MethodPost, "/snake/start", body, &snap); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	return &snap, nil
}

// Game looks up the board size and threshold of a running game
func (c *Client) Game(ctx context.Context, gameID string) (*service.GameInfo, error) {
	var list struct {
		Games []service.GameInfo `json:"games"`
	}
	if err := c.do(ctx, http.MethodGet, "/snake/games", nil, &list); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	for i := range list.Games {
		if list.Games[i].ID == gameID {
			return &list.Games[i], nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Message: "Game not found"}
}

// Move sends one direction
func (c *Client) Move(ctx context.Context, gameID string, dir engine.Direction) (*service.MoveResult, error) {
	req := map[string]string{"game_id": gameID, "direction": string(dir)}

	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, "/snake/move", req, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", dir, err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
