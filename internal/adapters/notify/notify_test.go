package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/corey/tabwarden/internal/ports"
)

var (
	_ ports.Notifier = (*Log)(nil)
	_ ports.Notifier = (*Desktop)(nil)
	_ ports.Notifier = Multi(nil)
)

func TestLog_Show(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewLog(zap.New(core)).Show("🎁 Focus Reward", "+15 points for 1 hour distraction-free!")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "notification", entry.Message)
	assert.Equal(t, "🎁 Focus Reward", entry.ContextMap()["title"])
}

type recordedCall struct {
	name string
	args []string
}

func newFakeDesktop(goos string) (*Desktop, <-chan recordedCall) {
	calls := make(chan recordedCall, 4)
	d := NewDesktop(zap.NewNop())
	d.goos = goos
	d.run = func(_ context.Context, name string, args ...string) error {
		calls <- recordedCall{name: name, args: args}
		return nil
	}
	return d, calls
}

func TestDesktop_Linux(t *testing.T) {
	d, calls := newFakeDesktop("linux")
	d.Show("⚠️ Focus Alert", "Back to work")

	select {
	case c := <-calls:
		assert.Equal(t, "notify-send", c.name)
		assert.Equal(t, []string{"--app-name=tabwarden", "⚠️ Focus Alert", "Back to work"}, c.args)
	case <-time.After(time.Second):
		t.Fatal("notifier was not invoked")
	}
}

func TestDesktop_DarwinQuotes(t *testing.T) {
	d, calls := newFakeDesktop("darwin")
	d.Show("Title", `say "hi"`)

	c := <-calls
	assert.Equal(t, "osascript", c.name)
	assert.Equal(t, `display notification "say \"hi\"" with title "Title"`, c.args[1])
}

func TestDesktop_UnsupportedOS(t *testing.T) {
	d, calls := newFakeDesktop("plan9")
	d.Show("t", "m")
	select {
	case <-calls:
		t.Fatal("no command on unsupported OS")
	case <-time.After(50 * time.Millisecond):
	}
}

type capture struct {
	mu     sync.Mutex
	titles []string
}

func (c *capture) Show(title, _ string) {
	c.mu.Lock()
	c.titles = append(c.titles, title)
	c.mu.Unlock()
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &capture{}, &capture{}
	Multi{a, b}.Show("🔥 3-Day Streak!", "You stayed productive today!")
	assert.Equal(t, []string{"🔥 3-Day Streak!"}, a.titles)
	assert.Equal(t, []string{"🔥 3-Day Streak!"}, b.titles)
}
