package ibc

import (
	"time"
)

// ClientOutput is the result of creating a light client.
type ClientOutput struct {
	ClientID   string `json:"client_id"`
	ClientType string `json:"client_type"`
}

// ConnectionEndOutput is one end of a connection as reported by the relayer.
type ConnectionEndOutput struct {
	ClientID     string `json:"client_id"`
	ConnectionID string `json:"connection_id"`
}

// ConnectionOutput is the result of a connection handshake.
type ConnectionOutput struct {
	ASide       ConnectionEndOutput `json:"a_side"`
	BSide       ConnectionEndOutput `json:"b_side"`
	DelayPeriod Duration            `json:"delay_period"`
}

// ChannelEndOutput is one end of a channel as reported by the relayer.
// ChannelID and Version are nil until the handshake assigned them.
type ChannelEndOutput struct {
	ClientID     string  `json:"client_id"`
	ConnectionID string  `json:"connection_id"`
	PortID       string  `json:"port_id"`
	ChannelID    *string `json:"channel_id"`
	Version      *string `json:"version"`
}

// ChannelOutput is the result of a channel handshake.
type ChannelOutput struct {
	Ordering string           `json:"ordering"`
	ASide    ChannelEndOutput `json:"a_side"`
	BSide    ChannelEndOutput `json:"b_side"`
}

// Duration is a duration serialized as seconds and nanoseconds.
type Duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

// AsDuration converts d to a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}
