package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://discord.com/api/v10"

// Permission bits granted to group members on their channel.
const memberPermissions = 0x400 | 0x800 | 0x10000 // view, send, read history

// Client is a thin REST client for the handful of Discord endpoints the
// bot needs.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBase is test-only, pointing the client at a fake API.
func NewClientWithBase(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("discord: %s (code %d)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("discord: status %d", resp.StatusCode)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
	}
	return nil
}

// GatewayURL asks the API where the websocket gateway lives.
func (c *Client) GatewayURL(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/gateway/bot", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// GuildChannels lists all channels in a guild.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	var channels []Channel
	err := c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/channels", nil, &channels)
	return channels, err
}

// CreateGuildChannel creates a text channel or category in a guild.
func (c *Client) CreateGuildChannel(ctx context.Context, guildID string, ch Channel) (Channel, error) {
	var created Channel
	err := c.do(ctx, http.MethodPost, "/guilds/"+guildID+"/channels", ch, &created)
	return created, err
}

// EditChannelPermissions grants the user read/write access to a channel.
func (c *Client) EditChannelPermissions(ctx context.Context, channelID, userID string) error {
	payload := struct {
		Allow string `json:"allow"`
		Type  int    `json:"type"` // 1 = member overwrite
	}{
		Allow: fmt.Sprintf("%d", memberPermissions),
		Type:  1,
	}
	return c.do(ctx, http.MethodPut, "/channels/"+channelID+"/permissions/"+userID, payload, nil)
}

// SendMessage posts a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg Message) error {
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", msg, nil)
}

// CreateDM opens (or reuses) a DM channel with the user.
func (c *Client) CreateDM(ctx context.Context, userID string) (string, error) {
	payload := struct {
		RecipientID string `json:"recipient_id"`
	}{RecipientID: userID}
	var ch Channel
	if err := c.do(ctx, http.MethodPost, "/users/@me/channels", payload, &ch); err != nil {
		return "", err
	}
	return ch.ID, nil
}

// RespondMessage answers an interaction with an ephemeral message.
func (c *Client) RespondMessage(ctx context.Context, interaction *Interaction, msg Message) error {
	payload := struct {
		Type int `json:"type"`
		Data struct {
			Message
			Flags int `json:"flags"`
		} `json:"data"`
	}{Type: callbackChannelMessage}
	payload.Data.Message = msg
	payload.Data.Flags = 1 << 6 // ephemeral
	return c.do(ctx, http.MethodPost, "/interactions/"+interaction.ID+"/"+interaction.Token+"/callback", payload, nil)
}

// RespondModal answers an interaction by opening a modal.
func (c *Client) RespondModal(ctx context.Context, interaction *Interaction, title, customID string, inputs []Component) error {
	payload := struct {
		Type int `json:"type"`
		Data struct {
			Title      string      `json:"title"`
			CustomID   string      `json:"custom_id"`
			Components []Component `json:"components"`
		} `json:"data"`
	}{Type: callbackModal}
	payload.Data.Title = title
	payload.Data.CustomID = customID
	payload.Data.Components = inputs
	return c.do(ctx, http.MethodPost, "/interactions/"+interaction.ID+"/"+interaction.Token+"/callback", payload, nil)
}
