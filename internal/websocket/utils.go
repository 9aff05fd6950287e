package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Write sends a frame with a write deadline.
func Write(conn *websocket.Conn, event Event, data any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Frame{Event: event, Data: data})
}

// WriteError sends an error frame.
func WriteError(conn *websocket.Conn, errMsg string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Frame{Event: EventError, Error: errMsg})
}

// Read decodes the next client frame. Idle connections time out after
// readWait.
func Read(conn *websocket.Conn, v *Request) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}
