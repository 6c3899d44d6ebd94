package media

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bookplay-cli/bookplay/constant"
	"github.com/bookplay-cli/bookplay/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements Element on top of mpv's JSON-IPC protocol. A single mpv
// process is started in idle mode on first Load and reused for every
// subsequent source.
type MPV struct {
	audioOnly  bool
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *eventListener
	ipcMu      sync.Mutex // protects socket writes

	mu       sync.Mutex
	handlers Handlers
	started  bool
	eofSeen  bool
}

// NewMPV creates a new mpv-backed element (does not start the process).
func NewMPV(audioOnly bool) *MPV {
	return &MPV{
		audioOnly: audioOnly,
		exited:    make(chan struct{}),
	}
}

// ensureStarted spawns the idle mpv process and attaches the event listener.
func (m *MPV) ensureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	// Random socket path under os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/).
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Bookplay, randomBytes))

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
	}

	if m.audioOnly {
		args = append(args, "--no-video", "--force-window=no")
	} else {
		args = append(args, "--force-window=yes")
	}

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
			default:
				log.Warnf("killing mpv: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.onEvent)
	if err := m.listener.Start(); err != nil {
		return fmt.Errorf("mpv events: %w", err)
	}

	m.started = true
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// onEvent maps observed mpv property changes onto the element's handlers.
func (m *MPV) onEvent(property string, data interface{}) {
	m.mu.Lock()
	handlers := m.handlers
	m.mu.Unlock()

	switch property {
	case "eof-reached":
		reached, ok := data.(bool)
		if !ok || !reached {
			return
		}
		m.mu.Lock()
		already := m.eofSeen
		m.eofSeen = true
		m.mu.Unlock()
		if !already && handlers.Ended != nil {
			handlers.Ended()
		}
	case "pause":
		paused, ok := data.(bool)
		if ok && !paused && handlers.Playing != nil {
			handlers.Playing()
		}
	case "end-file":
		event, ok := data.(map[string]interface{})
		if !ok {
			return
		}
		if reason, _ := event["reason"].(string); reason == "error" && handlers.Error != nil {
			handlers.Error()
		}
	}
}

// Load replaces the current source, paused at position zero.
func (m *MPV) Load(src string) error {
	if err := m.ensureStarted(); err != nil {
		return err
	}

	safe, err := sanitizeMediaTarget(src)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.mu.Lock()
	m.eofSeen = false
	m.mu.Unlock()

	if _, err := m.sendCommand([]interface{}{"loadfile", safe, "replace"}); err != nil {
		return err
	}
	_, err = m.sendCommand([]interface{}{"set_property", "pause", true})
	return err
}

// Play resumes playback of the loaded source.
func (m *MPV) Play() error {
	if err := m.ensureStarted(); err != nil {
		return err
	}
	_, err := m.sendCommand([]interface{}{"set_property", "pause", false})
	return err
}

// Pause suspends playback, keeping the position.
func (m *MPV) Pause() error {
	if err := m.ensureStarted(); err != nil {
		return err
	}
	_, err := m.sendCommand([]interface{}{"set_property", "pause", true})
	return err
}

// Seek moves to an absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// CurrentTime reports the playback position, zero when nothing is loaded.
func (m *MPV) CurrentTime() float64 {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return 0
	}

	data, err := m.sendCommand([]interface{}{"get_property", "time-pos"})
	if err != nil {
		// "property unavailable" means nothing is loaded, a valid state.
		return 0
	}
	pos, ok := data.(float64)
	if !ok {
		return 0
	}
	return pos
}

// Reset unloads the current source.
func (m *MPV) Reset() {
	m.mu.Lock()
	started := m.started
	m.eofSeen = false
	m.mu.Unlock()
	if !started {
		return
	}
	_, _ = m.sendCommand([]interface{}{"stop"})
}

func (m *MPV) SetHandlers(handlers Handlers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = handlers
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()

	if !started {
		return nil
	}

	if m.listener != nil {
		m.listener.Stop()
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv over IPC.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty target")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in target")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("target must not start with '-' (looks like a flag)")
	}

	return filepath.Clean(l), nil
}
