package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Connection wraps a gorilla socket behind the domain.Connection port.
// Writes are serialized with a mutex; gorilla connections do not support
// concurrent writers.
type Connection struct {
	conn    *websocket.Conn
	id      string
	userID  string
	writeMu sync.Mutex
}

func NewConnection(conn *websocket.Conn, id, userID string) *Connection {
	return &Connection{
		conn:   conn,
		id:     id,
		userID: userID,
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *Connection) ReadJSON(v interface{}) error {
	return c.conn.ReadJSON(v)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}
