package api

import (
	"crypto/sha256"
	"encoding/hex"
)

// Node types reported by the content API.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
)

// Credential is the bearer token for one session. It is immutable after
// acquisition and safe to share across workers.
type Credential struct {
	Token string
}

// ShareTarget identifies the remote content tree to mirror.
type ShareTarget struct {
	ContentID string
	Password  string // plaintext; hashed before transmission
}

// PasswordHash returns the hex-encoded SHA-256 digest of the password, or
// "" if no password is set. The remote service expects the hash, never the
// plaintext.
func (t ShareTarget) PasswordHash() string {
	if t.Password == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(t.Password))
	return hex.EncodeToString(sum[:])
}

// Content describes one remote node. Folders carry ChildrenIDs (ordered)
// and a Children map keyed by those ids; files carry a direct Link.
type Content struct {
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Link        string           `json:"link"`
	ChildrenIDs []string         `json:"childrenIds"`
	Children    map[string]Child `json:"children"`
}

// Child is a folder entry. Folder children are resolved by a further
// lookup on Code; file children already carry their Link.
type Child struct {
	Code string `json:"code"`
	Type string `json:"type"`
	Name string `json:"name"`
	Link string `json:"link"`
}
