package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobtier-engine/internal/domain"
)

func TestSourceErrorMessages(t *testing.T) {
	assert.Equal(t, "greenhouse API error: 404 Not Found", BadStatus(domain.PlatformGreenhouse, 404).Error())
	assert.Contains(t, Unavailable(domain.PlatformLever, errors.New("dial tcp: refused")).Error(), "lever")
	assert.Contains(t, Unavailable(domain.PlatformLever, errors.New("dial tcp: refused")).Error(), "dial tcp: refused")

	pf := ParseFailure(domain.PlatformAshby, errors.New("unexpected EOF"))
	assert.True(t, IsParseFailure(pf))
	assert.False(t, IsParseFailure(BadStatus(domain.PlatformAshby, 500)))
	assert.Contains(t, pf.Error(), "ashby")
}

func TestSourceErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, Unavailable(domain.PlatformWorkday, cause), cause)
}
