package importurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsHTTPS(t *testing.T) {
	assert.Nil(t, Validate("https://modules.ruchy.dev/std/collections.ruchy"))
}

func TestValidateAcceptsHTTPToLocalhost(t *testing.T) {
	assert.Nil(t, Validate("http://localhost:8080/lib/shapes.rchy"))
	assert.Nil(t, Validate("http://127.0.0.1:8080/lib/shapes.rchy"))
}

func TestValidateRejectsHTTPToRemoteHost(t *testing.T) {
	err := Validate("http://example.com/mod.ruchy")
	assert.NotNil(t, err)
}

func TestValidateRejectsWrongExtension(t *testing.T) {
	err := Validate("https://modules.ruchy.dev/std/collections.rs")
	assert.NotNil(t, err)
}

func TestValidateRejectsPathTraversal(t *testing.T) {
	err := Validate("https://modules.ruchy.dev/../secret.ruchy")
	assert.NotNil(t, err)

	err = Validate("https://modules.ruchy.dev/dir/.hidden.ruchy")
	assert.NotNil(t, err)
}

func TestValidateRejectsBlockedSchemeSubstrings(t *testing.T) {
	assert.NotNil(t, Validate("javascript:alert(1)"))
	assert.NotNil(t, Validate("https://modules.ruchy.dev/data:text.ruchy"))
	assert.NotNil(t, Validate("file:///etc/passwd.ruchy"))
}

func TestValidateRejectsMalformedURL(t *testing.T) {
	err := Validate("https://modules.ruchy.dev/%zz.ruchy")
	assert.NotNil(t, err)
}

func TestValidateAcceptsRchySuffix(t *testing.T) {
	assert.Nil(t, Validate("https://modules.ruchy.dev/util.rchy"))
}
