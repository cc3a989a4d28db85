package protocol

import "encoding/json"

type OutboundType string

const (
	EvtRoomJoined          OutboundType = "room-joined"
	EvtRoomFull            OutboundType = "room-full"
	EvtPlayerJoined        OutboundType = "player-joined"
	EvtPlayerLeft          OutboundType = "player-left"
	EvtSetupProgress       OutboundType = "setup-progress"
	EvtGameStarted         OutboundType = "game-started"
	EvtTurnChanged         OutboundType = "turn-changed"
	EvtTurnNumberUpdated   OutboundType = "turn-number-updated"
	EvtCardMoved           OutboundType = "card-moved"
	EvtCardUpdated         OutboundType = "card-updated"
	EvtCardPositionUpdated OutboundType = "card-position-updated"
	EvtCardRemoved         OutboundType = "card-removed"
	EvtOpponentHandUpdate  OutboundType = "opponent-hand-update"
	EvtPlayerDeckReady     OutboundType = "player-deck-ready"
	EvtDiceRolled          OutboundType = "dice-rolled"
	EvtDiceClosed          OutboundType = "dice-closed"
	EvtNWOPlayed           OutboundType = "nwo-played"
	EvtNWORemoved          OutboundType = "nwo-removed"
	EvtShowCard            OutboundType = "show-card-to-all"
	EvtError               OutboundType = "error"
)

// Outbound is any server -> client payload.
type Outbound interface {
	Type() OutboundType
}

// Envelope is the frame written to the socket.
type Envelope struct {
	Type OutboundType `json:"type"`
	Data Outbound     `json:"data"`
}

func Wrap(o Outbound) Envelope { return Envelope{Type: o.Type(), Data: o} }

type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Ready     bool   `json:"ready"`
	DeckReady bool   `json:"deckReady"`
}

type TableCard struct {
	CardID   string          `json:"cardId"`
	Card     json.RawMessage `json:"card"`
	Position Position        `json:"position"`
	Rotation int             `json:"rotation"`
	Tokens   int             `json:"tokens"`
	PlayerID string          `json:"playerId"`
}

type GameState struct {
	Phase       string                     `json:"phase"`
	TurnNumber  int                        `json:"turnNumber"`
	CurrentTurn string                     `json:"currentTurn,omitempty"`
	Table       []TableCard                `json:"table"`
	NWO         map[string]json.RawMessage `json:"nwo,omitempty"`
}

type RoomJoined struct {
	RoomID     string       `json:"roomId"`
	Players    []PlayerInfo `json:"players"`
	MaxPlayers int          `json:"maxPlayers"`
	GameState  GameState    `json:"gameState"`
}

type RoomFull struct {
	RoomID     string `json:"roomId"`
	MaxPlayers int    `json:"maxPlayers"`
}

type PlayerJoined struct {
	PlayerID           string `json:"playerId"`
	PlayerName         string `json:"playerName"`
	CurrentPlayerCount int    `json:"currentPlayerCount"`
	MaxPlayers         int    `json:"maxPlayers"`
}

type PlayerLeft struct {
	PlayerID         string `json:"playerId"`
	PlayerName       string `json:"playerName"`
	RemainingPlayers int    `json:"remainingPlayers"`
}

type SetupProgress struct {
	ReadyCount    int `json:"readyCount"`
	RequiredCount int `json:"requiredCount"`
	MaxPlayers    int `json:"maxPlayers"`
}

type GameStarted struct {
	CurrentTurn        string `json:"currentTurn"`
	StartingPlayerName string `json:"startingPlayerName"`
	TurnNumber         int    `json:"turnNumber"`
}

type TurnChanged struct {
	CurrentTurn string `json:"currentTurn"`
}

type TurnNumberUpdated struct {
	TurnNumber int `json:"turnNumber"`
}

type CardMoved struct {
	PlayerID  string          `json:"playerId"`
	CardID    string          `json:"cardId"`
	CardIndex int             `json:"cardIndex"`
	Card      json.RawMessage `json:"card"`
	To        string          `json:"to"`
	Position  Position        `json:"position"`
	Rotation  int             `json:"rotation"`
	Tokens    int             `json:"tokens"`
}

type CardUpdated struct {
	PlayerID  string `json:"playerId"`
	CardID    string `json:"cardId"`
	CardIndex int    `json:"cardIndex"`
	Rotation  *int   `json:"rotation,omitempty"`
	Tokens    *int   `json:"tokens,omitempty"`
}

type CardPositionUpdated struct {
	PlayerID  string   `json:"playerId"`
	CardID    string   `json:"cardId"`
	CardIndex int      `json:"cardIndex"`
	Position  Position `json:"position"`
}

type CardRemoved struct {
	PlayerID  string `json:"playerId"`
	CardID    string `json:"cardId"`
	CardIndex int    `json:"cardIndex"`
}

type OpponentHandUpdate struct {
	PlayerID   string          `json:"playerId"`
	HandCounts json.RawMessage `json:"handCounts"`
}

type PlayerDeckReady struct {
	PlayerID string `json:"playerId"`
}

type DiceRolled struct {
	PlayerID string `json:"playerId"`
	Dice1    int    `json:"dice1"`
	Dice2    int    `json:"dice2"`
}

type DiceClosed struct{}

type NWOPlayed struct {
	Color string          `json:"color"`
	Card  json.RawMessage `json:"card"`
}

type NWORemoved struct {
	Color string `json:"color"`
}

type ShowCardToAll struct {
	PlayerID string          `json:"playerId"`
	Card     json.RawMessage `json:"card"`
}

type Error struct {
	Message string `json:"message"`
}

func (RoomJoined) Type() OutboundType          { return EvtRoomJoined }
func (RoomFull) Type() OutboundType            { return EvtRoomFull }
func (PlayerJoined) Type() OutboundType        { return EvtPlayerJoined }
func (PlayerLeft) Type() OutboundType          { return EvtPlayerLeft }
func (SetupProgress) Type() OutboundType       { return EvtSetupProgress }
func (GameStarted) Type() OutboundType         { return EvtGameStarted }
func (TurnChanged) Type() OutboundType         { return EvtTurnChanged }
func (TurnNumberUpdated) Type() OutboundType   { return EvtTurnNumberUpdated }
func (CardMoved) Type() OutboundType           { return EvtCardMoved }
func (CardUpdated) Type() OutboundType         { return EvtCardUpdated }
func (CardPositionUpdated) Type() OutboundType { return EvtCardPositionUpdated }
func (CardRemoved) Type() OutboundType         { return EvtCardRemoved }
func (OpponentHandUpdate) Type() OutboundType  { return EvtOpponentHandUpdate }
func (PlayerDeckReady) Type() OutboundType     { return EvtPlayerDeckReady }
func (DiceRolled) Type() OutboundType          { return EvtDiceRolled }
func (DiceClosed) Type() OutboundType          { return EvtDiceClosed }
func (NWOPlayed) Type() OutboundType           { return EvtNWOPlayed }
func (NWORemoved) Type() OutboundType          { return EvtNWORemoved }
func (ShowCardToAll) Type() OutboundType       { return EvtShowCard }
func (Error) Type() OutboundType               { return EvtError }
