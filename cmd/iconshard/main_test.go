package main

import (
	"bytes"
	"encoding/json"
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

func TestExpandCacheDir(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "template", tmpl: "{cache}/storage", base: "/var/cache", want: "/var/cache/storage"},
		{name: "plain path", tmpl: "/data/chunks", base: "", want: "/data/chunks"},
		{name: "missing base", tmpl: "{cache}/storage", base: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandCacheDir(tt.tmpl, tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeIconSet(t *testing.T, n int) string {
	t.Helper()

	icons := map[string]any{}
	for i := 0; i < n; i++ {
		icons[fmt.Sprintf("icon%02d", i)] = map[string]string{"body": strings.Repeat("x", 100)}
	}
	data, err := json.Marshal(map[string]any{"prefix": "demo", "icons": icons})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestChunksCommand(t *testing.T) {
	path := writeIconSet(t, 40)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"iconshard", "chunks", "--chunk-size", "1000", "--min-icons-per-chunk", "10", path})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "prefix: demo")
	assert.Contains(t, text, "icons: 40")
	assert.Contains(t, text, "chunks: 4")
	assert.Contains(t, text, "icon10")
	assert.Contains(t, text, "icon39")
}

func TestChunksCommandNoSplit(t *testing.T) {
	path := writeIconSet(t, 40)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"iconshard", "chunks", "--chunk-size", "0", path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "chunks: 1")
}

func TestGetCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo.json", r.URL.Path)
		assert.Equal(t, "a,b", r.URL.Query().Get("icons"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prefix":"demo","icons":{"a":{"body":"<g/>"}},"not_found":["b"]}`))
	}))
	defer ts.Close()

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"iconshard", "get", "--server", ts.URL, "demo", "a", "b"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"not_found": [`)
	assert.Contains(t, out.String(), `"prefix": "demo"`)
}
