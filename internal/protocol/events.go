package protocol

import (
	json "github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
)

// Outbound event types not shared with inbound ones.
const (
	TypeClientPeerConfig = "clientPeerConfig"
	TypeSetClients       = "setClients"
	TypeSetClient        = "setClient"
	TypeUpdateLobby      = "update_lobby"
	TypeNewLobbies       = "new_lobbies"
	TypeAck              = "ack"
	TypePong             = "pong"
)

// Ack statuses of a join_lobby reply.
const (
	AckOK     = 0
	AckFailed = 1
)

type ClientPeerConfig struct {
	Type           string             `json:"type"`
	ForceRelayOnly bool               `json:"forceRelayOnly"`
	ICEServers     []webrtc.ICEServer `json:"iceServers"`
}

func NewClientPeerConfig(forceRelayOnly bool, servers []webrtc.ICEServer) ClientPeerConfig {
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	return ClientPeerConfig{Type: TypeClientPeerConfig, ForceRelayOnly: forceRelayOnly, ICEServers: servers}
}

type JoinEvent struct {
	Type     string                 `json:"type"`
	SocketID core.SessionID         `json:"socketId"`
	Client   *domain.ClientIdentity `json:"client"`
}

func NewJoin(sid core.SessionID, client *domain.ClientIdentity) JoinEvent {
	return JoinEvent{Type: TypeJoin, SocketID: sid, Client: client}
}

// SetClients lists the other room members; unknown identities encode as null.
type SetClients struct {
	Type    string                                    `json:"type"`
	Clients map[core.SessionID]*domain.ClientIdentity `json:"clients"`
}

func NewSetClients(clients map[core.SessionID]*domain.ClientIdentity) SetClients {
	return SetClients{Type: TypeSetClients, Clients: clients}
}

type SetClient struct {
	Type     string                 `json:"type"`
	SocketID core.SessionID         `json:"socketId"`
	Client   *domain.ClientIdentity `json:"client"`
}

func NewSetClient(sid core.SessionID, client *domain.ClientIdentity) SetClient {
	return SetClient{Type: TypeSetClient, SocketID: sid, Client: client}
}

type SetHost struct {
	Type   string `json:"type"`
	HostID int    `json:"hostId"`
}

func NewSetHost(hostID int) SetHost {
	return SetHost{Type: TypeSetHost, HostID: hostID}
}

type VAD struct {
	Type     string                 `json:"type"`
	Activity bool                   `json:"activity"`
	Client   *domain.ClientIdentity `json:"client"`
	SocketID core.SessionID         `json:"socketId"`
}

func NewVAD(sid core.SessionID, client *domain.ClientIdentity, activity bool) VAD {
	return VAD{Type: TypeVAD, Activity: activity, Client: client, SocketID: sid}
}

// Signal carries an opaque negotiation payload; Data is forwarded byte for byte.
type Signal struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	From core.SessionID  `json:"from"`
}

func NewSignal(from core.SessionID, data json.RawMessage) Signal {
	return Signal{Type: TypeSignal, Data: data, From: from}
}

type UpdateLobby struct {
	Type  string             `json:"type"`
	Lobby domain.PublicLobby `json:"lobby"`
}

func NewUpdateLobby(l domain.PublicLobby) UpdateLobby {
	return UpdateLobby{Type: TypeUpdateLobby, Lobby: l}
}

type RemoveLobby struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

func NewRemoveLobby(id int) RemoveLobby {
	return RemoveLobby{Type: TypeRemoveLobby, ID: id}
}

type NewLobbies struct {
	Type    string               `json:"type"`
	Lobbies []domain.PublicLobby `json:"lobbies"`
}

func NewNewLobbies(lobbies []domain.PublicLobby) NewLobbies {
	if lobbies == nil {
		lobbies = []domain.PublicLobby{}
	}
	return NewLobbies{Type: TypeNewLobbies, Lobbies: lobbies}
}

// Ack answers a join_lobby request identified by its ack id.
type Ack struct {
	Type    string              `json:"type"`
	Ack     int                 `json:"ack"`
	Status  int                 `json:"status"`
	Code    domain.LobbyCode    `json:"code,omitempty"`
	Server  string              `json:"server,omitempty"`
	Lobby   *domain.PublicLobby `json:"lobby,omitempty"`
	Message string              `json:"message,omitempty"`
}

func NewAckOK(ack int, code domain.LobbyCode, l domain.PublicLobby) Ack {
	return Ack{Type: TypeAck, Ack: ack, Status: AckOK, Code: code, Server: l.Server, Lobby: &l}
}

func NewAckFailed(ack int, reason string) Ack {
	return Ack{Type: TypeAck, Ack: ack, Status: AckFailed, Message: reason}
}

type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong { return Pong{Type: TypePong} }
