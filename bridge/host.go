package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/bookplay-cli/bookplay/log"
)

// Commander is implemented by bridges that can deliver inbound host commands.
type Commander interface {
	// OnCommand registers the handler for host commands and starts delivery.
	// Only one handler is supported; later registrations replace it.
	OnCommand(handler func(command string))
}

// hostCommand is one inbound frame from the hosting shell.
type hostCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// hostMessage is one newline-delimited JSON frame sent to the hosting shell.
type hostMessage struct {
	Type    string            `json:"type"`
	Page    int               `json:"page,omitempty"`
	Key     string            `json:"key,omitempty"`
	Value   string            `json:"value,omitempty"`
	Event   string            `json:"event,omitempty"`
	Props   map[string]string `json:"props,omitempty"`
	Seconds float64           `json:"seconds,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Host forwards notifications to a hosting shell over a unix socket while
// mirroring page data into the local store, so a dropped host connection never
// loses session state.
type Host struct {
	mu        sync.Mutex
	conn      net.Conn
	local     *Local
	handler   func(command string)
	listening bool
}

// ConnectHost dials the hosting shell's socket.
func ConnectHost(socket string) (*Host, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect host: %w", err)
	}
	return &Host{conn: conn, local: NewLocal()}, nil
}

// send writes one frame. Failures are logged and swallowed: host traffic is
// fire-and-forget.
func (h *Host) send(msg hostMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Warnf("host frame: %v", err)
		return
	}
	if _, err := h.conn.Write(append(payload, '\n')); err != nil {
		log.Warnf("host write: %v", err)
	}
}

func (h *Host) StorePageData(page int, key, value string) error {
	h.send(hostMessage{Type: "store-page-data", Page: page, Key: key, Value: value})
	return h.local.StorePageData(page, key, value)
}

func (h *Host) PageData(page int, key string) (string, bool) {
	return h.local.PageData(page, key)
}

func (h *Host) ReportAnalytics(event string, props map[string]string) {
	h.send(hostMessage{Type: "analytics", Event: event, Props: props})
}

func (h *Host) ReportVideoPlayed(seconds float64) {
	h.send(hostMessage{Type: "video-played", Seconds: seconds})
}

func (h *Host) SendMessageToHost(message string) {
	h.send(hostMessage{Type: "message", Message: message})
}

// OnCommand registers the handler for inbound host commands (play, pause,
// back) and starts the read loop on first call.
func (h *Host) OnCommand(handler func(command string)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handler = handler
	if !h.listening && h.conn != nil {
		h.listening = true
		go h.listen(h.conn)
	}
}

// listen reads newline-delimited frames until the connection drops. Unknown
// frame types are ignored so the outbound protocol can grow.
func (h *Host) listen(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd hostCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			log.Debugf("host frame skipped: %v", err)
			continue
		}
		if cmd.Type != "command" || cmd.Command == "" {
			continue
		}

		h.mu.Lock()
		handler := h.handler
		h.mu.Unlock()

		if handler != nil {
			handler(cmd.Command)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debugf("host read: %v", err)
	}
}

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
