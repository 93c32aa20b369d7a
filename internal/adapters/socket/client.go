package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/corey/tabwarden/internal/ports"
)

// Client connects to the tabwarden daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Event submits a browser event. The daemon assigns an ID when ev.ID is empty.
func (c *Client) Event(ev ports.Event) (*EventResult, error) {
	return callFor[EventResult](c, MethodEvent, ev)
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	return callFor[HealthResult](c, MethodHealth, nil)
}

// Status fetches the current balance, streak and today's totals.
func (c *Client) Status() (*StatusResult, error) {
	return callFor[StatusResult](c, MethodStatus, nil)
}

// Stats fetches per-domain distraction totals.
func (c *Client) Stats() (*StatsResult, error) {
	return callFor[StatsResult](c, MethodStats, nil)
}

// Trend fetches the 7-day trend.
func (c *Client) Trend() (*TrendResult, error) {
	return callFor[TrendResult](c, MethodTrend, nil)
}

// Sprint starts (active=true) or cancels a focus sprint.
func (c *Client) Sprint(active bool) (*SprintResult, error) {
	return callFor[SprintResult](c, MethodSprint, SprintParams{Active: active})
}

// Insights returns the last classification, nudge and flow.
func (c *Client) Insights() (*InsightsResult, error) {
	return callFor[InsightsResult](c, MethodInsights, nil)
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(MethodShutdown, nil)
	return err
}

// Reset wipes all persisted state and re-initializes day-zero defaults.
func (c *Client) Reset() error {
	_, err := c.call(MethodReset, nil)
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// callFor performs a request and decodes its result into T.
func callFor[T any](c *Client, method string, params any) (*T, error) {
	resp, err := c.call(method, params)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var result T
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

func (c *Client) call(method string, params any) (*Response, error) {
	return c.callWithTimeout(method, params, 5*time.Second)
}

func (c *Client) callWithTimeout(method string, params any, timeout time.Duration) (*Response, error) {
	req := Request{ID: uuid.NewString(), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		req.Params = raw
	}

	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	return &resp, nil
}
