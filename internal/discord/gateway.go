package discord

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// EventHandlers receive gateway dispatches. Nil handlers are skipped.
type EventHandlers struct {
	OnMemberJoin    func(ctx context.Context, member *Member)
	OnMessageCreate func(ctx context.Context, msg *MessageCreate)
	OnInteraction   func(ctx context.Context, interaction *Interaction)
}

// Gateway maintains the websocket session: identify, heartbeats, and
// dispatch fan-in. One connection per process.
type Gateway struct {
	client   *Client
	handlers EventHandlers

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGateway(client *Client, handlers EventHandlers) *Gateway {
	return &Gateway{client: client, handlers: handlers}
}

// Start connects and keeps the session alive until Stop or ctx cancel,
// reconnecting with a fixed backoff on failure.
func (g *Gateway) Start(ctx context.Context) {
	g.mu.Lock()
	if g.cancel != nil {
		g.mu.Unlock()
		return
	}
	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})
	g.mu.Unlock()

	go func() {
		defer close(g.done)
		for {
			if err := g.runSession(ctx); err != nil && ctx.Err() == nil {
				log.Printf("gateway session: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
}

// Stop tears the connection down and waits for the session goroutine.
func (g *Gateway) Stop() {
	g.mu.Lock()
	cancel := g.cancel
	done := g.done
	g.cancel = nil
	g.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (g *Gateway) runSession(ctx context.Context) error {
	url, err := g.client.GatewayURL(ctx)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url+"?v=10&encoding=json", nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// ReadJSON blocks with no deadline; closing the connection on cancel is
	// the only way to unblock it so Stop returns promptly.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	// Writes come from both the heartbeat loop and identify; serialize them.
	var writeMu sync.Mutex
	writeJSON := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	var lastSeq atomic.Int64
	heartbeatStop := make(chan struct{})
	defer close(heartbeatStop)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return err
		}
		if payload.Seq != nil {
			lastSeq.Store(*payload.Seq)
		}

		switch payload.Op {
		case opHello:
			var hello struct {
				HeartbeatInterval int `json:"heartbeat_interval"`
			}
			if err := json.Unmarshal(payload.Data, &hello); err != nil {
				return err
			}
			go g.heartbeat(ctx, heartbeatStop, writeJSON, time.Duration(hello.HeartbeatInterval)*time.Millisecond, &lastSeq)
			if err := g.identify(writeJSON); err != nil {
				return err
			}
		case opHeartbeat:
			seq := lastSeq.Load()
			if err := writeJSON(gatewayPayload{Op: opHeartbeat, Seq: &seq}); err != nil {
				return err
			}
		case opHeartbeatAck:
			// nothing to track; a dead connection surfaces as a read error
		case opReconnect, opInvalidSession:
			return nil
		case opDispatch:
			g.dispatch(ctx, payload)
		}
	}
}

func (g *Gateway) identify(writeJSON func(any) error) error {
	data, err := json.Marshal(map[string]any{
		"token":   g.client.token,
		"intents": identifyIntents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "leetcode-buddy",
			"device":  "leetcode-buddy",
		},
	})
	if err != nil {
		return err
	}
	return writeJSON(gatewayPayload{Op: opIdentify, Data: data})
}

func (g *Gateway) heartbeat(ctx context.Context, stop <-chan struct{}, writeJSON func(any) error, interval time.Duration, lastSeq *atomic.Int64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			seq := lastSeq.Load()
			if err := writeJSON(gatewayPayload{Op: opHeartbeat, Seq: &seq}); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, payload gatewayPayload) {
	switch payload.Type {
	case "GUILD_MEMBER_ADD":
		if g.handlers.OnMemberJoin == nil {
			return
		}
		var member Member
		if err := json.Unmarshal(payload.Data, &member); err != nil {
			log.Printf("decode member add: %v", err)
			return
		}
		g.handlers.OnMemberJoin(ctx, &member)
	case "MESSAGE_CREATE":
		if g.handlers.OnMessageCreate == nil {
			return
		}
		var msg MessageCreate
		if err := json.Unmarshal(payload.Data, &msg); err != nil {
			log.Printf("decode message: %v", err)
			return
		}
		g.handlers.OnMessageCreate(ctx, &msg)
	case "INTERACTION_CREATE":
		if g.handlers.OnInteraction == nil {
			return
		}
		var interaction Interaction
		if err := json.Unmarshal(payload.Data, &interaction); err != nil {
			log.Printf("decode interaction: %v", err)
			return
		}
		g.handlers.OnInteraction(ctx, &interaction)
	}
}
