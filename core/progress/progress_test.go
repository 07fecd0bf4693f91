package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestSignal(t *testing.T) {
	var nilSignal *Signal
	assert.False(t, nilSignal.Cancelled())

	s := &Signal{}
	assert.False(t, s.Cancelled())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Cancel()
		}()
	}
	wg.Wait()
	assert.True(t, s.Cancelled())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewLogger(zap.New(core))

	r.Stage("textures", 2)
	r.Step("textures", "T_Wood", 1, 2)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "stage started", entries[0].Message)
	assert.Equal(t, "T_Wood", entries[1].ContextMap()["element"])
}

func TestFunc(t *testing.T) {
	var steps []string
	r := Func{OnStep: func(stage, item string, done, total int) {
		steps = append(steps, item)
	}}

	r.Stage("meshes", 1)
	r.Step("meshes", "SM_Chair", 1, 1)

	assert.Equal(t, []string{"SM_Chair"}, steps)
	Nop{}.Step("x", "y", 0, 0)
}
