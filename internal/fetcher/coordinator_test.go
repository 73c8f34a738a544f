package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/wsnlndrv/gofile-dl/internal/api"
	"github.com/wsnlndrv/gofile-dl/internal/resolver"
)

// treeServer serves a set of named payloads and records request order.
func treeServer(files map[string][]byte) (*httptest.Server, *[]string, *sync.Mutex) {
	var mu sync.Mutex
	var order []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()

		data, ok := files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	return server, &order, &mu
}

func makeTasks(t *testing.T, server *httptest.Server, base string, names []string) []resolver.Task {
	t.Helper()
	tasks := make([]resolver.Task, 0, len(names))
	for i, name := range names {
		tasks = append(tasks, resolver.Task{
			ID:        fmt.Sprintf("task-%d", i),
			LocalPath: filepath.Join(base, name),
			Name:      name,
			Link:      server.URL + "/" + name,
		})
	}
	return tasks
}

func TestRunPoolMatchesSequential(t *testing.T) {
	files := make(map[string][]byte)
	names := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("file%d.bin", i)
		names = append(names, name)
		data := make([]byte, 8*1024+i*100)
		for j := range data {
			data[j] = byte((i + j) % 256)
		}
		files["/"+name] = data
	}

	server, _, _ := treeServer(files)
	defer server.Close()

	f := New(Options{ChunkSize: 4 * 1024})

	seqDir := t.TempDir()
	seq := f.Run(context.Background(), makeTasks(t, server, seqDir, names), api.Credential{}, RunOptions{
		Policy: PolicySequential,
		Delay:  time.Millisecond,
	})

	poolDir := t.TempDir()
	pool := f.Run(context.Background(), makeTasks(t, server, poolDir, names), api.Credential{}, RunOptions{
		Policy:  PolicyPool,
		Workers: 4,
	})

	if len(seq) != len(names) || len(pool) != len(names) {
		t.Fatalf("outcome counts: seq=%d pool=%d, want %d", len(seq), len(pool), len(names))
	}

	for i, name := range names {
		if seq[i].Status != StatusCompleted {
			t.Fatalf("sequential %s: %s (%v)", name, seq[i].Status, seq[i].Err)
		}
		if pool[i].Status != StatusCompleted {
			t.Fatalf("pool %s: %s (%v)", name, pool[i].Status, pool[i].Err)
		}

		a, err := os.ReadFile(filepath.Join(seqDir, name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(poolDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Errorf("%s: pool content differs from sequential", name)
		}
		if string(a) != string(files["/"+name]) {
			t.Errorf("%s: content differs from source", name)
		}
	}
}

func TestRunSequentialOrder(t *testing.T) {
	files := map[string][]byte{
		"/a.bin": []byte("aaaa"),
		"/b.bin": []byte("bbbb"),
		"/c.bin": []byte("cccc"),
	}
	server, order, mu := treeServer(files)
	defer server.Close()

	f := New(Options{})
	tasks := makeTasks(t, server, t.TempDir(), []string{"a.bin", "b.bin", "c.bin"})

	outcomes := f.Run(context.Background(), tasks, api.Credential{}, RunOptions{
		Policy: PolicySequential,
		Delay:  time.Millisecond,
	})

	for _, o := range outcomes {
		if o.Status != StatusCompleted {
			t.Fatalf("%s: %s (%v)", o.Task.Name, o.Status, o.Err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"/a.bin", "/b.bin", "/c.bin"}
	if len(*order) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(*order))
	}
	for i, path := range want {
		if (*order)[i] != path {
			t.Errorf("request %d: got %s, want %s", i, (*order)[i], path)
		}
	}
}

func TestRunPoolIsolatesFailures(t *testing.T) {
	files := map[string][]byte{
		"/good1.bin": []byte("good one"),
		"/good2.bin": []byte("good two"),
		// bad.bin missing: the server answers 404.
	}
	server, _, _ := treeServer(files)
	defer server.Close()

	f := New(Options{})
	tasks := makeTasks(t, server, t.TempDir(), []string{"good1.bin", "bad.bin", "good2.bin"})

	outcomes := f.Run(context.Background(), tasks, api.Credential{}, RunOptions{
		Policy:  PolicyPool,
		Workers: 2,
	})

	if outcomes[0].Status != StatusCompleted {
		t.Errorf("good1: %s (%v)", outcomes[0].Status, outcomes[0].Err)
	}
	if outcomes[1].Status != StatusFailed {
		t.Errorf("bad: expected failed, got %s", outcomes[1].Status)
	}
	if outcomes[2].Status != StatusCompleted {
		t.Errorf("good2: %s (%v)", outcomes[2].Status, outcomes[2].Err)
	}
}

func TestRunPoolContextCancel(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	f := New(Options{ReadTimeout: 10 * time.Second})
	tasks := makeTasks(t, server, t.TempDir(), []string{"x.bin", "y.bin", "z.bin"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan []Outcome, 1)
	go func() {
		done <- f.Run(ctx, tasks, api.Credential{}, RunOptions{Policy: PolicyPool, Workers: 1})
	}()

	select {
	case outcomes := <-done:
		for _, o := range outcomes {
			if o.Status != StatusFailed {
				t.Errorf("%s: expected failed after cancel, got %s", o.Task.Name, o.Status)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
