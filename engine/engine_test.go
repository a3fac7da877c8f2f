package engine

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithTimeout runs e headless and fails the test if it does not return in time.
func runWithTimeout(t *testing.T, e Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
	}
}

func TestPostedWorkRunsBeforeTheTick(t *testing.T) {
	t.Parallel()

	var order []string
	var e Engine
	e = NewEngine(
		WithTickRate(500),
		WithLogger(log.New(&bytes.Buffer{}, "", 0)),
		WithTickCallback(func(dt float32) {
			order = append(order, "tick")
			if len(order) >= 4 {
				e.Quit()
			}
		}),
	)
	e.Post(func() { order = append(order, "posted") })

	runWithTimeout(t, e)
	require.GreaterOrEqual(t, len(order), 4)
	assert.Equal(t, []string{"posted", "tick"}, order[:2])

	e.Quit()
	e.Post(func() { t.Error("posts after quit are dropped") })
}

func TestFramePanicStopsTheEngine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := NewEngine(
		WithTickRate(500),
		WithLogger(log.New(&buf, "", 0)),
		WithTickCallback(func(float32) { panic("boom") }),
	)
	runWithTimeout(t, e)
	assert.Contains(t, buf.String(), "[Engine] frame goroutine recovered from panic: boom")
}

func TestProfilerSeesCameraWriters(t *testing.T) {
	t.Parallel()

	quiet := log.New(&bytes.Buffer{}, "", 0)
	cam := camera.NewCamera(camera.WithLogger(quiet))
	frames := 0
	var e Engine
	e = NewEngine(
		WithTickRate(500),
		WithCamera(cam),
		WithProfiling(true),
		WithLogger(quiet),
		WithTickCallback(func(float32) {
			cam.BeginFrame()
			frames++
			if frames == 3 {
				e.Quit()
			}
		}),
	)
	e.SetTickRate(0)
	runWithTimeout(t, e)
	assert.Equal(t, uint64(frames), cam.Frame())
	assert.Nil(t, e.Window())
}
