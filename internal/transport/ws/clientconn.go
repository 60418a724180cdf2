package ws

import (
	"net"
	"time"

	"github.com/bale2838/Tetris/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	key  string
}

func newClient(conn *websocket.Conn, key string) client {
	return client{conn: conn, key: key}
}

func (c client) WriteMessage(msg domain.Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		return errors.WithMessage(err, "websocket conn write json")
	}
	return nil
}

func (c client) ReadMessage() (domain.Message, error) {
	var msg domain.Message
	err := c.conn.ReadJSON(&msg)
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr), errors.Is(err, net.ErrClosed):
		return domain.Message{}, domain.ErrConnectionClosed
	case err != nil:
		return domain.Message{}, errors.WithMessage(err, "websocket conn read json")
	}
	return msg, nil
}

func (c client) Key() string {
	return c.key
}

func (c client) Close() {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	_ = c.conn.Close()
}
