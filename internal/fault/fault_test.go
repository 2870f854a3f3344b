package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileErrorUnwrap(t *testing.T) {
	err := File("a.lin", "decode", ErrDecode, fs.ErrNotExist)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, IsFatal(err))
	assert.Equal(t, "a.lin: decode: decode failed: file does not exist", err.Error())

	var fe *FileError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &fe))
	assert.Equal(t, "decode", fe.Stage)
}

func TestInvariantIsFatal(t *testing.T) {
	err := fmt.Errorf("cache: %w", Invariantf("case %s already cached", "1:3"))
	assert.True(t, IsFatal(err))
	assert.Contains(t, err.Error(), "case 1:3 already cached")
}
