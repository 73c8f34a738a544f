package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsnlndrv/gofile-dl/internal/api"
)

// contentServer serves canned content lookups keyed by node id.
func contentServer(t *testing.T, nodes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/contents/")
		body, ok := nodes[id]
		if !ok {
			w.Write([]byte(`{"status":"error-notFound","data":{}}`))
			return
		}
		fmt.Fprintf(w, `{"status":"ok","data":%s}`, body)
	}))
}

func TestResolveFolderTree(t *testing.T) {
	nodes := map[string]string{
		"root1": `{"type":"folder","name":"shared",
			"childrenIds":["c1","c2"],
			"children":{
				"c1":{"code":"c1","type":"file","name":"f1.bin","link":"https://store/f1"},
				"c2":{"code":"c2","type":"folder","name":"d1"}
			}}`,
		"c2": `{"type":"folder","name":"d1",
			"childrenIds":["c3"],
			"children":{
				"c3":{"code":"c3","type":"file","name":"f2.bin","link":"https://store/f2"}
			}}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	base := t.TempDir()
	client := api.NewClient(api.Options{BaseURL: server.URL})

	tasks, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{Token: "t"}, base)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Depth-first, in childrenIds order.
	assert.Equal(t, filepath.Join(base, "root1", "shared", "f1.bin"), tasks[0].LocalPath)
	assert.Equal(t, "f1.bin", tasks[0].Name)
	assert.Equal(t, "https://store/f1", tasks[0].Link)
	assert.Equal(t, filepath.Join(base, "root1", "shared", "d1", "f2.bin"), tasks[1].LocalPath)

	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)

	// Directories mirror the remote layout.
	for _, dir := range []string{
		filepath.Join(base, "root1"),
		filepath.Join(base, "root1", "shared"),
		filepath.Join(base, "root1", "shared", "d1"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestResolveChildOrder(t *testing.T) {
	// childrenIds order wins, not map iteration order.
	nodes := map[string]string{
		"root1": `{"type":"folder","name":"shared",
			"childrenIds":["z","a","m"],
			"children":{
				"a":{"code":"a","type":"file","name":"a.bin","link":"la"},
				"m":{"code":"m","type":"file","name":"m.bin","link":"lm"},
				"z":{"code":"z","type":"file","name":"z.bin","link":"lz"}
			}}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	client := api.NewClient(api.Options{BaseURL: server.URL})
	tasks, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "z.bin", tasks[0].Name)
	assert.Equal(t, "a.bin", tasks[1].Name)
	assert.Equal(t, "m.bin", tasks[2].Name)
}

func TestResolveSingleFileRoot(t *testing.T) {
	nodes := map[string]string{
		"root1": `{"type":"file","name":"solo.bin","link":"https://store/solo"}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	base := t.TempDir()
	client := api.NewClient(api.Options{BaseURL: server.URL})
	tasks, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{}, base)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, filepath.Join(base, "root1", "solo.bin"), tasks[0].LocalPath)
}

func TestResolveLookupFailureAborts(t *testing.T) {
	nodes := map[string]string{
		"root1": `{"type":"folder","name":"shared",
			"childrenIds":["gone"],
			"children":{
				"gone":{"code":"gone","type":"folder","name":"d1"}
			}}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	client := api.NewClient(api.Options{BaseURL: server.URL})
	_, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{}, t.TempDir())

	var resErr *api.ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestResolveDuplicatePath(t *testing.T) {
	nodes := map[string]string{
		"root1": `{"type":"folder","name":"shared",
			"childrenIds":["c1","c2"],
			"children":{
				"c1":{"code":"c1","type":"file","name":"same.bin","link":"l1"},
				"c2":{"code":"c2","type":"file","name":"same.bin","link":"l2"}
			}}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	client := api.NewClient(api.Options{BaseURL: server.URL})
	_, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{}, t.TempDir())

	var dupErr *DuplicatePathError
	require.ErrorAs(t, err, &dupErr)
	assert.Contains(t, dupErr.Path, "same.bin")
}

func TestResolveExistingDirectories(t *testing.T) {
	// Re-resolving into an already-mirrored tree is not an error.
	nodes := map[string]string{
		"root1": `{"type":"folder","name":"shared",
			"childrenIds":["c1"],
			"children":{
				"c1":{"code":"c1","type":"file","name":"f1.bin","link":"l1"}
			}}`,
	}
	server := contentServer(t, nodes)
	defer server.Close()

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "root1", "shared"), 0o755))

	client := api.NewClient(api.Options{BaseURL: server.URL})
	tasks, err := Resolve(context.Background(), client, api.ShareTarget{ContentID: "root1"}, api.Credential{}, base)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
