// Package client is a Go client for the chat server. It plays the role the
// frontend auth store plays in the browser: it holds the session cookie, the
// cached authenticated user, the online-user set and the single websocket
// connection, and keeps them in sync with the REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// User mirrors the server's public user projection.
type User struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Message mirrors the server's message shape, REST and realtime alike.
type Message struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu        sync.RWMutex
	authUser  *User
	online    []uint
	ws        *websocket.Conn
	onMessage func(Message)
}

// New creates a client for the server at baseURL (e.g. "http://localhost:5001").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Message != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type userEnvelope struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Signup registers an account; on success the session cookie is stored and
// the realtime socket is connected.
func (c *Client) Signup(ctx context.Context, email, fullName, password string) (*User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"fullName": fullName,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setAuthUser(&resp.User)
	c.connectSocket(ctx)
	return &resp.User, nil
}

// Login authenticates and connects the realtime socket.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setAuthUser(&resp.User)
	c.connectSocket(ctx)
	return &resp.User, nil
}

// Logout clears the server session, the cached user and the socket.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setAuthUser(nil)
	c.disconnectSocket()
	return err
}

// CheckAuth asks the server who the session cookie belongs to and, when
// authenticated, connects the realtime socket.
func (c *Client) CheckAuth(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/check-auth", nil, &user); err != nil {
		c.setAuthUser(nil)
		return nil, err
	}
	c.setAuthUser(&user)
	c.connectSocket(ctx)
	return &user, nil
}

// UpdateProfile uploads a base64 data-URI image and returns its new URL.
func (c *Client) UpdateProfile(ctx context.Context, profilePicDataURI string) (string, error) {
	var resp struct {
		ProfilePic string `json:"profilePic"`
		User       User   `json:"user"`
	}
	err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"profilePic": profilePicDataURI,
	}, &resp)
	if err != nil {
		return "", err
	}
	c.setAuthUser(&resp.User)
	return resp.ProfilePic, nil
}

// Users lists every other user.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/messages/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Messages fetches the conversation with the given user.
func (c *Client) Messages(ctx context.Context, otherID uint) ([]Message, error) {
	var msgs []Message
	path := fmt.Sprintf("/api/messages/%d", otherID)
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Send delivers a message; image is an optional base64 data URI.
func (c *Client) Send(ctx context.Context, receiverID uint, text, image string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/api/messages/%d", receiverID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"text":  text,
		"image": image,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// AuthUser returns the cached authenticated user, nil when logged out.
func (c *Client) AuthUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authUser == nil {
		return nil
	}
	u := *c.authUser
	return &u
}

// OnlineUsers returns the last online snapshot pushed by the server.
func (c *Client) OnlineUsers() []uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]uint, len(c.online))
	copy(out, c.online)
	return out
}

// OnMessage registers the callback invoked for every newMessage event.
func (c *Client) OnMessage(fn func(Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

func (c *Client) setAuthUser(u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authUser = u
}

// connectSocket dials /ws with the session cookie. Already connected is a
// no-op; a dial failure is logged away silently, REST keeps working and the
// next auth call retries.
func (c *Client) connectSocket(ctx context.Context) {
	c.mu.Lock()
	if c.ws != nil || c.authUser == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"
	dialer := websocket.Dialer{Jar: c.httpc.Jar}
	ws, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()

	go c.readLoop(ws)
}

func (c *Client) disconnectSocket() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.online = nil
	c.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

func (c *Client) readLoop(ws *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.ws == ws {
			c.ws = nil
			c.online = nil
		}
		c.mu.Unlock()
		ws.Close()
	}()

	for {
		var ev struct {
			Name string          `json:"event"`
			Data json.RawMessage `json:"data"`
		}
		if err := ws.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Name {
		case "getOnlineUsers":
			var ids []uint
			if err := json.Unmarshal(ev.Data, &ids); err == nil {
				c.mu.Lock()
				c.online = ids
				c.mu.Unlock()
			}
		case "newMessage":
			var msg Message
			if err := json.Unmarshal(ev.Data, &msg); err == nil {
				c.mu.RLock()
				fn := c.onMessage
				c.mu.RUnlock()
				if fn != nil {
					fn(msg)
				}
			}
		}
	}
}
