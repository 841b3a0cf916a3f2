package discord

import "encoding/json"

// Channel types and opcodes per the Discord API v10.
const (
	ChannelTypeGuildText     = 0
	ChannelTypeGuildCategory = 4
)

const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opHello          = 10
	opHeartbeatAck   = 11
	opInvalidSession = 9
	opReconnect      = 7
)

// Gateway intents the bot needs: guilds, members, messages, message content.
const identifyIntents = 1<<0 | 1<<1 | 1<<9 | 1<<15

// Interaction types and callback types.
const (
	InteractionMessageComponent = 3
	InteractionModalSubmit      = 5

	callbackChannelMessage = 4
	callbackModal          = 9
)

type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Topic    string `json:"topic,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// Component is a message component (action row, button) or a modal input.
type Component struct {
	Type        int         `json:"type"`
	Style       int         `json:"style,omitempty"`
	Label       string      `json:"label,omitempty"`
	CustomID    string      `json:"custom_id,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Value       string      `json:"value,omitempty"`
	Required    bool        `json:"required,omitempty"`
	MaxLength   int         `json:"max_length,omitempty"`
	Components  []Component `json:"components,omitempty"`
}

type Message struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

type Member struct {
	User    *User  `json:"user"`
	GuildID string `json:"guild_id"`
}

type MessageCreate struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
}

// Interaction is the inbound payload for buttons and modal submits.
type Interaction struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Token string `json:"token"`
	Data  struct {
		CustomID   string      `json:"custom_id"`
		Components []Component `json:"components"`
	} `json:"data"`
	Member *Member `json:"member"`
	User   *User   `json:"user"`
}

// Sender returns the user behind the interaction, whether it arrived from
// a guild or a DM.
func (i *Interaction) Sender() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// TextValue digs the value out of a modal text input by custom_id.
func (i *Interaction) TextValue(customID string) string {
	for _, row := range i.Data.Components {
		for _, comp := range row.Components {
			if comp.CustomID == customID {
				return comp.Value
			}
		}
	}
	return ""
}

type gatewayPayload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Type string          `json:"t,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
