package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bale2838/Tetris/internal/adapters/webapi"
	"github.com/bale2838/Tetris/internal/domain"
	"github.com/bale2838/Tetris/pkg/utils"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var keymap = map[rune]domain.Command{
	'a': domain.LeftCommand,
	'd': domain.RightCommand,
	's': domain.SoftDropCommand,
	'w': domain.RotateCWCommand,
	'q': domain.RotateCCWCommand,
	'f': domain.HardDropCommand,
	' ': domain.HardDropCommand,
	'p': domain.PauseCommand,
	'r': domain.RestartCommand,
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	key := flag.String("key", uuid.NewString(), "client key used to resume a session")
	flag.Parse()

	health, err := webapi.New().HealthCheck(context.Background(), "http://"+*addr)
	if err != nil {
		log.Fatal("health check: " + err.Error())
	}
	log.Printf("server is %s, %d sessions", health.Status, health.Sessions)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/game"}
	header := http.Header{}
	header.Set(domain.ClientKeyHeader, *key)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	c := newClient(conn)
	go func() {
		if err := c.handleMessages(); err != nil {
			log.Fatal(err)
		}
	}()
	if err := c.handleInput(); err != nil {
		log.Fatal(err)
	}
}

type client struct {
	conn    *websocket.Conn
	scanner *bufio.Scanner
	status  string
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		scanner: bufio.NewScanner(os.Stdin),
	}
}

// handleInput reads one line at a time; every known rune is a command and an
// empty line starts the game.
func (c *client) handleInput() error {
	for c.scanner.Scan() {
		line := c.scanner.Text()
		if line == "" {
			if err := c.send(domain.StartCommand); err != nil {
				return err
			}
			continue
		}
		for _, r := range strings.ToLower(line) {
			cmd, ok := keymap[r]
			if !ok {
				continue
			}
			if err := c.send(cmd); err != nil {
				return err
			}
		}
	}
	return c.scanner.Err()
}

func (c *client) send(cmd domain.Command) error {
	err := c.conn.WriteJSON(domain.Message{
		Type:    domain.CommandMessage,
		Payload: domain.CommandPayload{Command: cmd},
	})
	if err != nil {
		return errors.WithMessage(err, "write json msg")
	}
	return nil
}

func (c *client) handleMessages() error {
	for {
		msg := new(domain.Message)
		if err := c.conn.ReadJSON(msg); err != nil {
			return errors.WithMessage(err, "read json msg")
		}
		switch msg.Type {
		case domain.WelcomeMessage:
			v, err := utils.DecodePayload[domain.WelcomePayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode 'WelcomePayload'")
			}
			c.status = "session " + v.SessionId
		case domain.StatusMessage:
			v, err := utils.DecodePayload[domain.StatusPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode 'StatusPayload'")
			}
			c.status = v.Text
		case domain.CueMessage:
			fmt.Print("\a")
		case domain.SnapshotMessage:
			v, err := utils.DecodePayload[domain.Snapshot](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode 'Snapshot'")
			}
			if err := v.ParseRows(); err != nil {
				return errors.WithMessage(err, "parse snapshot rows")
			}
			c.printBoard(v)
		}
	}
}

func (c *client) printBoard(s domain.Snapshot) {
	active := make(map[domain.Point]domain.Kind, 4)
	if s.Active != nil {
		for _, p := range s.Active.Cells {
			active[p] = s.Active.Kind
		}
	}
	var b strings.Builder
	b.WriteString("\033[H\033[J")
	for y := s.Height - 1; y >= 0; y-- {
		b.WriteString("|")
		for x := 0; x < s.Width; x++ {
			kind, ok := active[domain.Point{X: x, Y: y}]
			if !ok {
				kind = s.CellAt(x, y)
			}
			if kind == domain.Empty {
				b.WriteString(" .")
			} else {
				b.WriteString(" " + kind.String())
			}
		}
		b.WriteString(" |\n")
	}
	b.WriteString("+" + strings.Repeat("--", s.Width) + "-+\n")
	if s.State == domain.NotStarted {
		b.WriteString("TETRIS - press Enter to play\n")
	}
	fmt.Fprintf(&b, "%s   lines: %d   speed: %s\n", c.status, s.Lines, s.Interval)
	b.WriteString("a/d move  w/q rotate  s down  f drop  p pause  r restart\n")
	fmt.Print(b.String())
}
