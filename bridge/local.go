package bridge

import (
	"fmt"

	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/where"
	"github.com/metafates/gache"
)

// Local keeps session page data in a disk-backed registry and discards every
// host-bound notification. It is the bridge of a standalone reading session.
type Local struct {
	cacher *gache.Cache[map[string]string]
}

// NewLocal creates a local bridge backed by the session data store.
func NewLocal() *Local {
	return &Local{
		cacher: gache.New[map[string]string](
			&gache.Options{
				Path:       where.SessionData(),
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func pageKey(page int, key string) string {
	return fmt.Sprintf("%d/%s", page, key)
}

func (l *Local) data() map[string]string {
	cached, expired, err := l.cacher.Get()
	if err != nil || expired || cached == nil {
		return make(map[string]string)
	}
	return cached
}

func (l *Local) StorePageData(page int, key, value string) error {
	data := l.data()
	data[pageKey(page, key)] = value
	return l.cacher.Set(data)
}

func (l *Local) PageData(page int, key string) (string, bool) {
	value, ok := l.data()[pageKey(page, key)]
	return value, ok
}

func (l *Local) ReportAnalytics(event string, props map[string]string) {
	log.Debugf("analytics (no host): %s %v", event, props)
}

func (l *Local) ReportVideoPlayed(seconds float64) {
	log.Debugf("video played (no host): %.1fs", seconds)
}

func (l *Local) SendMessageToHost(message string) {
	log.Debugf("host message discarded (no host): %s", message)
}

func (l *Local) Close() error {
	return nil
}
