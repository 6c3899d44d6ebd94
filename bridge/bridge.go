// Package bridge carries notifications from the player to whatever hosts it
// and persists per-page session data so it survives page revisits within one
// reading session. All host-bound traffic is fire-and-forget: there is no
// acknowledgment contract and a missing host never blocks the player.
package bridge

import (
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/spf13/viper"
)

// Bridge is the channel between the player core and the outside world.
type Bridge interface {
	// StorePageData persists a key/value pair scoped to the page index.
	StorePageData(page int, key, value string) error

	// PageData retrieves a previously stored value for the page index.
	PageData(page int, key string) (string, bool)

	// ReportAnalytics sends a named analytics event with its properties.
	ReportAnalytics(event string, props map[string]string)

	// ReportVideoPlayed reports how long a page video actually played.
	ReportVideoPlayed(seconds float64)

	// SendMessageToHost pushes an opaque message over the host channel.
	SendMessageToHost(message string)

	Close() error
}

// Default returns the configured bridge: a host connection when a socket is
// set, the local store otherwise. A failed host connection degrades to the
// local store rather than failing the player.
func Default() Bridge {
	if socket := viper.GetString(key.BridgeSocket); socket != "" {
		b, err := ConnectHost(socket)
		if err == nil {
			return b
		}
		log.Warnf("host bridge %s unavailable, storing locally: %v", socket, err)
	}
	return NewLocal()
}
