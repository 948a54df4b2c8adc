package pathguard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/updatectl/internal/filelock"
	"github.com/harrison/updatectl/internal/logger"
)

// maxPathLength is the OS ceiling for an environment variable value; a PATH
// beyond this silently truncates and breaks command resolution.
const maxPathLength = 8191

// separator between PATH segments. Windows semantics apply regardless of the
// build platform so validation behaves identically everywhere.
const separator = ";"

// Backup is one PATH snapshot. Once written it is never modified; rollback
// depends on it staying byte-accurate.
type Backup struct {
	BackupID    string    `json:"backupId"`
	UserPath    string    `json:"userPath"`
	MachinePath string    `json:"machinePath"`
	SessionPath string    `json:"sessionPath"`
	Timestamp   time.Time `json:"timestamp"`
}

// Manager performs all PATH mutations. It is not safe for concurrent use;
// callers run it from a single goroutine.
type Manager struct {
	store     Store
	logger    *logger.Logger
	backupDir string
	backups   map[string]*Backup
}

// NewManager creates a Manager persisting backups under backupDir.
// log may be nil.
func NewManager(store Store, backupDir string, log *logger.Logger) *Manager {
	return &Manager{
		store:     store,
		logger:    log,
		backupDir: backupDir,
		backups:   make(map[string]*Backup),
	}
}

// Backup snapshots the user, machine, and process PATH under the given
// identifier and persists it to a JSON file. The file name embeds the
// identifier and a timestamp so existing backups are never overwritten.
// A backup that cannot be read or written is an error: backups are
// load-bearing for every mutation that follows.
func (m *Manager) Backup(id string) (*Backup, error) {
	if id == "" {
		return nil, fmt.Errorf("backup identifier must not be empty")
	}

	userPath, err := m.store.Get(ScopeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read user PATH for backup: %w", err)
	}
	machinePath, err := m.store.Get(ScopeMachine)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine PATH for backup: %w", err)
	}
	sessionPath, err := m.store.Get(ScopeProcess)
	if err != nil {
		return nil, fmt.Errorf("failed to read process PATH for backup: %w", err)
	}

	backup := &Backup{
		BackupID:    id,
		UserPath:    userPath,
		MachinePath: machinePath,
		SessionPath: sessionPath,
		Timestamp:   time.Now(),
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	// A uuid suffix keeps two backups taken in the same second distinct;
	// existing snapshots are never overwritten.
	name := fmt.Sprintf("path-backup-%s-%s-%s.json", id, backup.Timestamp.Format("20060102-150405"), uuid.New().String()[:8])
	path := filepath.Join(m.backupDir, name)

	lock := filelock.NewFileLock(filepath.Join(m.backupDir, ".backups.lock"))
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if err := filelock.AtomicWrite(path, data); err != nil {
		return nil, fmt.Errorf("failed to persist PATH backup: %w", err)
	}

	m.backups[id] = backup
	m.infof("PATH backup %q written to %s", id, path)
	return backup, nil
}

// Validate checks a candidate PATH string against the integrity rules for
// the target scope. Machine-scope candidates must contain every OS-critical
// directory; any scope is capped at maxPathLength. Suspicious substrings
// (doubled separators, "..") are logged as warnings but do not fail.
func (m *Manager) Validate(candidate string, scope Scope) error {
	if len(candidate) > maxPathLength {
		return fmt.Errorf("PATH length %d exceeds the %d character limit", len(candidate), maxPathLength)
	}

	if scope == ScopeMachine {
		for _, dir := range criticalMachineDirs() {
			if !containsSegment(candidate, dir) {
				return fmt.Errorf("machine PATH is missing critical directory %s", dir)
			}
		}
	}

	if strings.Contains(candidate, separator+separator) {
		m.warnf("candidate PATH contains doubled separators")
	}
	for _, seg := range splitSegments(candidate) {
		if strings.Contains(seg, "..") {
			m.warnf("candidate PATH contains relative traversal in segment %q", seg)
		}
	}

	return nil
}

// AddDir adds one directory to the PATH of the given scope. The caller must
// have taken a backup first and passes its identifier; any failure after the
// write begins triggers an automatic restore from that backup.
//
// Adding a directory that is already present (case-insensitive exact segment
// match) is a successful no-op. User-scope additions are also prepended to
// the process PATH so the change is visible to this run.
func (m *Manager) AddDir(dir string, scope Scope, backupID string) error {
	current, err := m.store.Get(scope)
	if err != nil {
		return fmt.Errorf("failed to read %s PATH: %w", scope, err)
	}

	if containsSegment(current, dir) {
		m.infof("%s already present in %s PATH", dir, scope)
		return nil
	}

	candidate := current
	if candidate != "" && !strings.HasSuffix(candidate, separator) {
		candidate += separator
	}
	candidate += dir

	if err := m.Validate(candidate, scope); err != nil {
		return fmt.Errorf("refusing to apply %s PATH: %w", scope, err)
	}

	if err := m.store.Set(scope, candidate); err != nil {
		m.restoreAfterFailure(backupID)
		return fmt.Errorf("failed to write %s PATH: %w", scope, err)
	}

	if scope == ScopeUser {
		session, err := m.store.Get(ScopeProcess)
		if err == nil && !containsSegment(session, dir) {
			if err := m.store.Set(ScopeProcess, dir+separator+session); err != nil {
				m.restoreAfterFailure(backupID)
				return fmt.Errorf("failed to update process PATH: %w", err)
			}
		}
	}

	// Verify the write landed before declaring success.
	applied, err := m.store.Get(scope)
	if err != nil || !containsSegment(applied, dir) {
		m.restoreAfterFailure(backupID)
		if err != nil {
			return fmt.Errorf("failed to verify %s PATH after write: %w", scope, err)
		}
		return fmt.Errorf("verification failed: %s not present in %s PATH after write", dir, scope)
	}

	m.infof("added %s to %s PATH", dir, scope)
	return nil
}

// Restore overwrites the user-scope PATH and the process PATH with the
// values from the named backup. Unknown identifiers fail loudly.
func (m *Manager) Restore(id string) error {
	backup, ok := m.backups[id]
	if !ok {
		// The recovery command runs in a fresh process; fall back to the
		// newest matching backup file on disk.
		var err error
		backup, err = m.findNewestBackup(id)
		if err != nil {
			m.errorf("cannot restore PATH: %v", err)
			return err
		}
	}

	return m.RestoreFrom(backup)
}

// RestoreFrom applies a loaded backup to the user-scope and process PATH.
func (m *Manager) RestoreFrom(backup *Backup) error {
	if err := m.store.Set(ScopeUser, backup.UserPath); err != nil {
		return fmt.Errorf("failed to restore user PATH: %w", err)
	}
	if err := m.store.Set(ScopeProcess, backup.SessionPath); err != nil {
		return fmt.Errorf("failed to restore process PATH: %w", err)
	}
	m.infof("PATH restored from backup %q taken %s", backup.BackupID, backup.Timestamp.Format(time.RFC3339))
	return nil
}

// ListBackups returns every persisted backup, newest first.
func (m *Manager) ListBackups() ([]*Backup, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []*Backup
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "path-backup-") || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		backup, err := LoadBackupFile(filepath.Join(m.backupDir, entry.Name()))
		if err != nil {
			m.warnf("skipping unreadable backup %s: %v", entry.Name(), err)
			continue
		}
		backups = append(backups, backup)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// LoadBackupFile parses one persisted backup file.
func LoadBackupFile(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	backup := &Backup{}
	if err := json.Unmarshal(data, backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}
	return backup, nil
}

// findNewestBackup locates the most recent persisted backup for an id.
func (m *Manager) findNewestBackup(id string) (*Backup, error) {
	backups, err := m.ListBackups()
	if err != nil {
		return nil, err
	}
	for _, b := range backups {
		if b.BackupID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unknown backup identifier %q", id)
}

// restoreAfterFailure attempts a rollback mid-operation. The original error
// is what the caller reports; a failed rollback only adds a log line.
func (m *Manager) restoreAfterFailure(backupID string) {
	if backupID == "" {
		m.errorf("PATH mutation failed with no backup identifier; cannot roll back")
		return
	}
	if err := m.Restore(backupID); err != nil {
		m.errorf("automatic PATH rollback from %q failed: %v", backupID, err)
	}
}

// criticalMachineDirs returns the directories that must never vanish from a
// machine-scope PATH; losing them makes the OS itself unreachable.
func criticalMachineDirs() []string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return []string{
		root + `\system32`,
		root,
		root + `\System32\Wbem`,
		root + `\System32\WindowsPowerShell\v1.0`,
	}
}

// containsSegment reports whether dir appears in path as an exact
// case-insensitive segment. Trailing backslashes are ignored on both sides,
// and %VAR% references in segments are expanded first: the machine PATH is
// stored as REG_EXPAND_SZ and spells the critical directories as
// %SystemRoot%\... on a default install.
func containsSegment(path, dir string) bool {
	want := strings.TrimRight(expandEnvRefs(dir), `\`)
	for _, seg := range splitSegments(path) {
		seg = expandEnvRefs(seg)
		if strings.EqualFold(strings.TrimRight(seg, `\`), want) {
			return true
		}
	}
	return false
}

// expandEnvRefs resolves %NAME% references against the environment. Names
// not set in the environment are left as written.
func expandEnvRefs(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "%")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start+1:], "%")
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		name := s[start+1 : start+1+end]
		b.WriteString(s[:start])
		if value := os.Getenv(name); value != "" {
			b.WriteString(value)
		} else {
			b.WriteString(s[start : start+end+2])
		}
		s = s[start+end+2:]
	}
}

// splitSegments splits a PATH string into trimmed non-empty segments.
func splitSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, separator) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func (m *Manager) infof(format string, args ...any) {
	if m.logger != nil {
		m.logger.Info("pathguard", format, args...)
	}
}

func (m *Manager) warnf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Warn("pathguard", format, args...)
	}
}

func (m *Manager) errorf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Error("pathguard", format, args...)
	}
}
