package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SessionState persists per-file viewing state as a JSON document so a
// reopened file starts where it was left.
type SessionState struct {
	path string
}

// NewSessionState creates session state backed by the given file. The
// file is created on first save.
func NewSessionState(path string) *SessionState {
	return &SessionState{path: path}
}

// DefaultStatePath returns the state file location, honoring
// XDG_STATE_HOME.
func DefaultStatePath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "linetab", "state.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "linetab", "state.json")
}

// Cursor returns the saved cursor offset for a file.
func (s *SessionState) Cursor(file string) (int, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, false
	}
	v := gjson.GetBytes(data, fileKey(file)+".cursor")
	if !v.Exists() {
		return 0, false
	}
	return int(v.Int()), true
}

// Session returns the identifier of the session that last saved state
// for a file.
func (s *SessionState) Session(file string) (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	v := gjson.GetBytes(data, fileKey(file)+".session")
	if !v.Exists() {
		return "", false
	}
	return v.String(), true
}

// SaveCursor records the cursor offset and session identifier for a
// file.
func (s *SessionState) SaveCursor(file string, cursor int, session string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		data = []byte("{}")
	}

	key := fileKey(file)
	data, err = sjson.SetBytes(data, key+".cursor", cursor)
	if err != nil {
		return err
	}
	data, err = sjson.SetBytes(data, key+".session", session)
	if err != nil {
		return err
	}
	data, err = sjson.SetBytes(data, key+".updated", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// fileKey builds the JSON path for a file entry. Path separator
// characters that are meaningful to the JSON path syntax are escaped.
func fileKey(file string) string {
	r := strings.NewReplacer(
		".", `\.`,
		"*", `\*`,
		"?", `\?`,
		"|", `\|`,
	)
	return "files." + r.Replace(file)
}
