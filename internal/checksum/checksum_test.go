package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	t.Run("deterministic for identical bytes", func(t *testing.T) {
		a := Sum([]byte("hello world"))
		b := Sum([]byte("hello world"))
		assert.Equal(t, a, b)
		assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", a)
	})

	t.Run("lowercase hex, 32 chars", func(t *testing.T) {
		d := Sum([]byte{0x00, 0xff, 0x10})
		assert.Len(t, d, 32)
		assert.Equal(t, d, string([]byte(d)))
		for _, r := range d {
			assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
		}
	})

	t.Run("different bytes different digest", func(t *testing.T) {
		assert.NotEqual(t, Sum([]byte("a")), Sum([]byte("b")))
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "abc123.pdf", Key("abc123", "pdf"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "docx", Extension("report.docx"))
	assert.Equal(t, "pdf", Extension("a.b.pdf"))
	assert.Equal(t, "noext", Extension("noext"))
}

func TestSwapExtension(t *testing.T) {
	assert.Equal(t, "report.pdf", SwapExtension("report.docx", "pdf"))
	assert.Equal(t, "a.b.pdf", SwapExtension("a.b.docx", "pdf"))
	assert.Equal(t, "noext.pdf", SwapExtension("noext", "pdf"))
}
