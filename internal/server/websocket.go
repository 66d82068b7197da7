package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/discordwell/hyperdraft/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the wire envelope in both directions.
type WSMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	ChoiceID string          `json:"choice_id,omitempty"`
	Ruleset  string          `json:"ruleset,omitempty"`
	Selected []string        `json:"selected,omitempty"`
	Action   *ActionPayload  `json:"action,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// CardSpec is the wire form of one deck card. Cards built from specs are
// vanilla: name, cost, types and body, with rules text carried along for
// the text-driven abilities the engine parses itself.
type CardSpec struct {
	Name      string   `json:"name"`
	ManaCost  string   `json:"mana_cost,omitempty"`
	Types     []string `json:"types"`
	Subtypes  []string `json:"subtypes,omitempty"`
	Abilities []string `json:"abilities,omitempty"`
	Power     int      `json:"power,omitempty"`
	Toughness int      `json:"toughness,omitempty"`
	Text      string   `json:"text,omitempty"`
	Count     int      `json:"count,omitempty"`
}

// joinPayload is the Data body of a join_game message.
type joinPayload struct {
	Name string     `json:"name,omitempty"`
	Deck []CardSpec `json:"deck,omitempty"`
}

// deckDefinitions expands wire card specs into card definitions, honoring
// per-spec counts.
func deckDefinitions(specs []CardSpec) []game.CardDefinition {
	var deck []game.CardDefinition
	for _, spec := range specs {
		def := &game.BasicCard{Chars: game.Characteristics{
			Name:      spec.Name,
			ManaCost:  spec.ManaCost,
			Types:     spec.Types,
			Subtypes:  spec.Subtypes,
			Abilities: spec.Abilities,
			Power:     spec.Power,
			Toughness: spec.Toughness,
			RulesText: spec.Text,
		}}
		count := spec.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			deck = append(deck, def)
		}
	}
	return deck
}

// ActionPayload carries one player action over the wire.
type ActionPayload struct {
	Kind      string   `json:"kind"`
	CardID    string   `json:"card_id,omitempty"`
	TargetID  string   `json:"target_id,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	AbilityID string   `json:"ability_id,omitempty"`
	XValue    int      `json:"x,omitempty"`
}

// Client is one websocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	gameID   string
}

// Hub routes messages between clients and the engine.
type Hub struct {
	engine     *game.Engine
	logger     *zap.Logger
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan clientMessage

	writeTimeout time.Duration
	pongTimeout  time.Duration
}

type clientMessage struct {
	client *Client
	msg    WSMessage
}

// NewHub creates a hub bound to an engine.
func NewHub(engine *game.Engine, logger *zap.Logger, writeTimeout, pongTimeout time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		engine:       engine,
		logger:       logger,
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan clientMessage, 64),
		writeTimeout: writeTimeout,
		pongTimeout:  pongTimeout,
	}
}

// Run is the hub's event loop. It owns the client set; all engine calls
// happen on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("client disconnected",
					zap.String("player_id", client.playerID),
				)
			}

		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		}
	}
}

func (h *Hub) handleMessage(client *Client, msg WSMessage) {
	h.logger.Debug("message received",
		zap.String("type", msg.Type),
		zap.String("player_id", client.playerID),
	)
	switch msg.Type {
	case "create_game":
		gameID := "game-" + uuid.NewString()[:8]
		ruleset := game.RulesetClassic
		if msg.Ruleset == string(game.RulesetBlitz) {
			ruleset = game.RulesetBlitz
		}
		if _, err := h.engine.CreateGame(gameID, ruleset, time.Now().UnixNano()); err != nil {
			client.sendError(err)
			return
		}
		client.gameID = gameID
		client.playerID = msg.PlayerID
		client.sendJSON(WSMessage{Type: "game_created", GameID: gameID})

	case "join_game":
		var payload joinPayload
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				client.sendError(fmt.Errorf("malformed join payload: %w", err))
				return
			}
		}
		name := payload.Name
		if name == "" {
			name = msg.PlayerID
		}
		if err := h.engine.JoinGame(msg.GameID, msg.PlayerID, name, deckDefinitions(payload.Deck)); err != nil {
			client.sendError(err)
			return
		}
		client.gameID = msg.GameID
		client.playerID = msg.PlayerID
		h.sendState(client)

	case "start_game":
		if _, err := h.engine.StartGame(client.gameID); err != nil {
			client.sendError(err)
			return
		}
		h.advance(client.gameID)
		h.broadcastState(client.gameID)

	case "advance":
		h.advance(client.gameID)
		h.broadcastState(client.gameID)

	case "action":
		if msg.Action == nil {
			client.sendError(fmt.Errorf("action message without action"))
			return
		}
		_, _, err := h.engine.ExecuteAction(client.gameID, client.playerID, game.Action{
			Kind:      game.ActionKind(msg.Action.Kind),
			CardID:    msg.Action.CardID,
			TargetID:  msg.Action.TargetID,
			Targets:   msg.Action.Targets,
			AbilityID: msg.Action.AbilityID,
			XValue:    msg.Action.XValue,
		})
		if err != nil {
			client.sendError(err)
			return
		}
		h.advance(client.gameID)
		h.broadcastState(client.gameID)

	case "submit_choice":
		if _, err := h.engine.SubmitChoice(client.gameID, msg.ChoiceID, client.playerID, msg.Selected); err != nil {
			client.sendError(err)
			return
		}
		h.advance(client.gameID)
		h.broadcastState(client.gameID)

	case "concede":
		if err := h.engine.Concede(client.gameID, client.playerID); err != nil {
			client.sendError(err)
			return
		}
		h.broadcastState(client.gameID)

	case "get_state":
		h.sendState(client)
	}
}

// advance drives the game until it needs a player again.
func (h *Hub) advance(gameID string) {
	if _, err := h.engine.RunUntilSuspended(gameID, 10_000); err != nil {
		h.logger.Error("game advance failed",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
	}
}

func (h *Hub) sendState(client *Client) {
	view, err := h.engine.View(client.gameID, client.playerID)
	if err != nil {
		client.sendError(err)
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		h.logger.Error("view marshal failed", zap.Error(err))
		return
	}
	client.sendJSON(WSMessage{Type: "game_state", GameID: client.gameID, Data: data})
}

func (h *Hub) broadcastState(gameID string) {
	for client := range h.clients {
		if client.gameID == gameID {
			h.sendState(client)
		}
	}
}

func (c *Client) sendJSON(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow client; drop the frame rather than block the hub.
	}
}

func (c *Client) sendError(err error) {
	c.sendJSON(WSMessage{Type: "error", Error: err.Error()})
}

// readPump reads frames off the connection into the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongTimeout))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(fmt.Errorf("malformed message: %w", err))
			continue
		}
		c.hub.inbound <- clientMessage{client: c, msg: msg}
	}
}

// writePump drains the send channel onto the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades an HTTP request into a hub client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 32),
	}
	h.register <- client
	go client.writePump()
	go client.readPump()
}
