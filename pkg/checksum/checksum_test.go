package checksum

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helloSHA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	otherSHA = "a3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

func TestCalculateBinaryChecksum(t *testing.T) {
	dir := t.TempDir()
	hello := filepath.Join(dir, "hello")
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(hello, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	sum, err := CalculateBinaryChecksum(hello)
	require.NoError(t, err)
	assert.Equal(t, helloSHA, sum)

	sum, err = CalculateBinaryChecksum(empty)
	require.NoError(t, err)
	assert.Equal(t, emptySHA, sum)

	_, err = CalculateBinaryChecksum(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestVerifyMatchIsCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bun-linux-x64.zip")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	actual, err := Verify(path, strings.ToUpper(helloSHA))
	require.NoError(t, err)
	assert.Equal(t, helloSHA, actual)
	assert.FileExists(t, path)
}

func TestVerifyAcceptsPrefixedDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bun-linux-x64.zip")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := Verify(path, "sha256:"+helloSHA)
	assert.NoError(t, err)
}

func TestVerifyMismatchDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bun-linux-x64.zip")
	// single byte mutation of "hello"
	require.NoError(t, os.WriteFile(path, []byte("hellp"), 0644))

	_, err := Verify(path, helloSHA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, helloSHA, mismatch.Expected)
	assert.NotEqual(t, helloSHA, mismatch.Actual)
	assert.Contains(t, err.Error(), "bun-linux-x64.zip")
	assert.NoFileExists(t, path)
}

func TestFindChecksum(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		archive string
		want    string
		found   bool
	}{
		{
			name:    "adjacent",
			page:    "bun-linux-x64.zip sha256:" + helloSHA,
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "upper case digest is lower-cased",
			page:    "bun-linux-x64.zip\n  sha256:  " + strings.ToUpper(helloSHA),
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "first match wins",
			page:    "bun-linux-x64.zip sha256:" + helloSHA + "\nbun-linux-x64.zip sha256:" + emptySHA,
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "archive name is matched literally",
			page:    "bun-linux-x64Xzip sha256:" + helloSHA,
			archive: "bun-linux-x64.zip",
			found:   false,
		},
		{
			name:    "digest outside the window",
			page:    "bun-linux-x64.zip" + strings.Repeat(" ", 401) + "sha256:" + helloSHA,
			archive: "bun-linux-x64.zip",
			found:   false,
		},
		{
			name:    "digest at the edge of the window",
			page:    "bun-linux-x64.zip" + strings.Repeat(" ", 400) + "sha256:" + helloSHA,
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "picks the digest after the requested archive",
			page:    "bun-darwin-x64.zip sha256:" + emptySHA + "\nbun-linux-x64.zip sha256:" + helloSHA,
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "sha256sum listing",
			page:    emptySHA + "  bun-darwin-x64.zip\n" + helloSHA + "  bun-linux-x64.zip\n",
			archive: "bun-linux-x64.zip",
			want:    helloSHA,
			found:   true,
		},
		{
			name:    "not listed",
			page:    "nothing here",
			archive: "bun-linux-x64.zip",
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindChecksum(tt.page, tt.archive)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindChecksumInMarkup(t *testing.T) {
	padding := strings.Repeat(`<span class="Truncate-text text-bold">&nbsp;</span>`, 20)
	page := `<html><head><style>.x { color: red }</style></head><body><ul>
<li><a href="/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64.zip">bun-linux-x64.zip</a>` + padding +
		`<span class="color-fg-muted">sha256:` + helloSHA + `</span></li>
<li><a>bun-darwin-x64.zip</a>` + padding + `<span>sha256:` + otherSHA + `</span></li>
</ul></body></html>`

	// the raw markup pushes the digest outside the window of the first archive
	require.Greater(t, strings.Index(page, "sha256:"+helloSHA)-strings.Index(page, "bun-linux-x64.zip</a>"), 400)

	got, ok := FindChecksum(page, "bun-linux-x64.zip")
	require.True(t, ok)
	assert.Equal(t, helloSHA, got)
}

func TestVisibleText(t *testing.T) {
	text := VisibleText(`<p>bun &amp; node</p><script>var x = "sha256:nope"</script><b> sha256:abc </b>`)
	assert.Equal(t, "bun & node\nsha256:abc\n", text)
}

func TestParseChecksumFile(t *testing.T) {
	content := "# SHASUMS256\n" + helloSHA + " *bun-linux-x64.zip\n" + emptySHA + "  dist/bun-darwin-x64.zip\n"

	v, err := ParseChecksumFile(content, "bun-linux-x64.zip")
	require.NoError(t, err)
	assert.Equal(t, helloSHA, v)

	v, err = ParseChecksumFile(content, "bun-darwin-x64.zip")
	require.NoError(t, err)
	assert.Equal(t, emptySHA, v)

	_, err = ParseChecksumFile(content, "bun-windows-x64.zip")
	assert.ErrorIs(t, err, ErrChecksumNotFound)

	_, err = ParseChecksumFile("deadbeef  bun-linux-x64.zip", "bun-linux-x64.zip")
	assert.Error(t, err)
}

func TestExpectedChecksum(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/releases/tag/bun-v1.1.0", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, "<div>bun-linux-x64.zip</div><div>sha256:%s</div>", helloSHA)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	got, err := ExpectedChecksum(context.Background(), server.URL+"/releases/tag/bun-v1.1.0", "bun-linux-x64.zip", nil)
	require.NoError(t, err)
	assert.Equal(t, helloSHA, got)

	_, err = ExpectedChecksum(context.Background(), server.URL+"/releases/tag/bun-v1.1.0", "bun-windows-x64.zip", nil)
	require.ErrorIs(t, err, ErrChecksumNotFound)
	assert.Contains(t, err.Error(), "bun-windows-x64.zip")

	_, err = ExpectedChecksum(context.Background(), server.URL+"/missing", "bun-linux-x64.zip", nil)
	assert.Error(t, err)
}
