package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/wsnlndrv/gofile-dl/internal/api"
)

// Task is one leaf file to download. Tasks are immutable once created and
// consumed exactly once by the download engine.
type Task struct {
	ID        string // stable identity for progress events
	LocalPath string // final destination, directories already created
	Name      string // display name
	Link      string // direct download link
}

// DuplicatePathError is returned when two nodes in one resolved tree map
// to the same local path. Accidental overwrites are not allowed; the
// caller has to rename or exclude one of the entries remotely.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("resolver: duplicate local path %s", e.Path)
}

// Resolve walks the remote tree rooted at target and returns one Task per
// file, in depth-first child order. The mirror root <baseDir>/<contentID>
// and every folder directory are created before their children resolve.
//
// Any lookup failure aborts the whole resolution: a partial tree is not
// trustworthy.
func Resolve(ctx context.Context, client *api.Client, target api.ShareTarget, cred api.Credential, baseDir string) ([]Task, error) {
	root := filepath.Join(baseDir, target.ContentID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror root: %w", err)
	}

	w := &walker{
		client:       client,
		cred:         cred,
		passwordHash: target.PasswordHash(),
		seen:         make(map[string]struct{}),
	}
	if err := w.walk(ctx, target.ContentID, root); err != nil {
		return nil, err
	}

	return w.tasks, nil
}

type walker struct {
	client       *api.Client
	cred         api.Credential
	passwordHash string
	tasks        []Task
	seen         map[string]struct{}
}

func (w *walker) walk(ctx context.Context, id, dir string) error {
	content, err := w.client.Content(ctx, id, w.cred, w.passwordHash)
	if err != nil {
		return err
	}

	if content.Type != api.TypeFolder {
		// A root that is itself a single file: one task, no nesting.
		return w.addTask(dir, content.Name, content.Link)
	}

	sub := filepath.Join(dir, content.Name)
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", sub, err)
	}

	for _, childID := range content.ChildrenIDs {
		child, ok := content.Children[childID]
		if !ok {
			return fmt.Errorf("resolver: node %s lists unknown child %s", id, childID)
		}

		if child.Type == api.TypeFolder {
			if err := w.walk(ctx, child.Code, sub); err != nil {
				return err
			}
			continue
		}

		if err := w.addTask(sub, child.Name, child.Link); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) addTask(dir, name, link string) error {
	path := filepath.Join(dir, name)
	if _, dup := w.seen[path]; dup {
		return &DuplicatePathError{Path: path}
	}
	w.seen[path] = struct{}{}

	w.tasks = append(w.tasks, Task{
		ID:        uuid.New().String(),
		LocalPath: path,
		Name:      name,
		Link:      link,
	})
	return nil
}
