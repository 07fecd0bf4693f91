package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestLoadAll(t *testing.T) {
	on := &fakeFeature{name: "publish", enabled: true}
	off := &fakeFeature{name: "disabled"}

	m := NewManager()
	m.Register(on)
	m.Register(off)

	loaded, err := m.LoadAll(fiber.New())
	assert.NoError(t, err)
	assert.Equal(t, []string{"publish"}, loaded)
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
}

func TestLoadAll_Error(t *testing.T) {
	m := NewManager()
	m.Register(&fakeFeature{name: "broken", enabled: true, err: errors.New("boom")})

	_, err := m.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "load feature broken: boom")
}
