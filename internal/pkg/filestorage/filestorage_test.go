package filestorage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"passport.pdf":           "passport.pdf",
		"my transcript (1).pdf":  "my_transcript__1_.pdf",
		"../../etc/passwd":       "passwd",
		`C:\Users\jane\scan.png`: "scan.png",
		"":                       "file",
		"/":                      "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestDocumentPath(t *testing.T) {
	id := uuid.MustParse("6f1c1f5e-2b0a-4b8e-9d1e-3c0e4e7c9a11")
	now := time.UnixMilli(1700000000123)

	got := DocumentPath("uploads/documents", id, now, "ID card.jpg")
	assert.Equal(t, "uploads/documents/6f1c1f5e-2b0a-4b8e-9d1e-3c0e4e7c9a11_1700000000123_ID_card.jpg", got)
}

func TestURLSigner(t *testing.T) {
	signer := NewURLSigner("secret", "http://localhost:8080/")

	link, err := signer.URL("documents/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080"+FilesPath+"?token="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	p, err := signer.Verify(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "documents/a.pdf", p)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewURLSigner("other", "").Verify(u.Query().Get("token"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewURLSigner("secret", "")
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.Token("documents/a.pdf", time.Minute)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := signer.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestDetectDocumentMIME(t *testing.T) {
	ct, ok, err := DetectDocumentMIME(bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.True(t, ok)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	ct, ok, err = DetectDocumentMIME(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.True(t, ok)

	ct, ok, err = DetectDocumentMIME(strings.NewReader("just some notes"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
	assert.False(t, ok)

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.cookie)</script></svg>`
	ct, ok, err = DetectDocumentMIME(strings.NewReader(svg))
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", ct)
	assert.False(t, ok)
}

func TestIsDocumentMIME(t *testing.T) {
	for _, ct := range []string{"application/pdf", "image/png", "image/jpeg", "IMAGE/WEBP", "image/heic", "image/gif; charset=binary"} {
		assert.True(t, IsDocumentMIME(ct), ct)
	}
	for _, ct := range []string{"image/svg+xml", "text/html", "application/octet-stream", ""} {
		assert.False(t, IsDocumentMIME(ct), ct)
	}
}

func TestLocalStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "store")
	ls, err := NewLocalStorage(base, NewURLSigner("secret", "http://files.test"))
	require.NoError(t, err)

	const p = "documents/abc_1_transcript.pdf"
	require.NoError(t, ls.Save(ctx, p, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"))

	_, err = os.Stat(filepath.Join(base, "documents", "abc_1_transcript.pdf"))
	require.NoError(t, err)

	obj, err := ls.Open(ctx, p)
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, pdfBytes, body)
	assert.Equal(t, int64(len(pdfBytes)), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	link, err := ls.SignedURL(ctx, p, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "http://files.test"+FilesPath)

	require.NoError(t, ls.Delete(ctx, p))
	_, err = ls.Open(ctx, p)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, ls.Delete(ctx, p), "deleting twice is fine")
	assert.NoError(t, ls.Delete(ctx, ""))
}

func TestLocalStorage_StaysUnderBase(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base, NewURLSigner("secret", ""))
	require.NoError(t, err)

	resolved, err := ls.resolve("../../outside.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "outside.pdf"), resolved)

	_, err = ls.resolve("..")
	assert.Error(t, err)
}
