package docrag_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docrag"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", "test")

	assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
	assert.Equal(t, "corpus \"test\" not found", docrag.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docrag.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docrag.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("importing: %w", docrag.Errorf(docrag.EINVALID, "nothing to import"))

	assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
	assert.Equal(t, "nothing to import", docrag.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("connection reset")

	assert.Equal(t, docrag.EINTERNAL, docrag.ErrorCode(err))
	assert.Equal(t, "Internal error.", docrag.ErrorMessage(err))
}
