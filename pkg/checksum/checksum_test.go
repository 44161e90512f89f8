package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// sha256("hello")
const helloSum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{helloSum, helloSum},
		{"sha256:" + helloSum, helloSum},
		{"  SHA256PREFIXLESS  ", "sha256prefixless"},
		{"sha256:ABCDEF", "abcdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, Normalize(tt.in), tt.in)
	}
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify([]byte("hello"), helloSum, "hello.tar.gz"))
	assert.NoError(t, Verify([]byte("hello"), "sha256:"+helloSum, "hello.tar.gz"))

	err := Verify([]byte("tampered"), helloSum, "https://example.com/hello.tar.gz")
	assert.ErrorIs(t, err, pkgerrors.ErrIntegrity)

	var integrity *pkgerrors.IntegrityError
	if assert.ErrorAs(t, err, &integrity) {
		assert.Equal(t, helloSum, integrity.Expected)
		assert.Equal(t, Sum([]byte("tampered")), integrity.Actual)
		assert.Equal(t, "https://example.com/hello.tar.gz", integrity.Path)
	}
}
