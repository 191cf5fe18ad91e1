package fatal

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(errors.New("plain")))
	assert.Equal(t, 3, ExitStatus(New(3, "boom")))
	assert.Equal(t, 7, ExitStatus(fmt.Errorf("wrapped: %w", Newf(7, "code %d", 7))))
}

func TestNewfWraps(t *testing.T) {
	err := Newf(2, "opening config: %w", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "opening config: file does not exist", err.Error())
}

func TestNewMessage(t *testing.T) {
	assert.Equal(t, "target failed", New(1, "target ", "failed").Error())
}
