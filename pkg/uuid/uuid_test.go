package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/fichas/pkg/uuid"
)

/*
TestNew checks that generated ids are valid and time ordered.
*/
func TestNew(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, first[:13], second[:13])
}

/*
TestValid rejects malformed ids.
*/
func TestValid(t *testing.T) {
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("../../etc/passwd"))
	assert.True(t, uuid.Valid("01890a5d-ac96-774b-bcce-b302099a8057"))
}
