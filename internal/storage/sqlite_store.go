package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"minitimer/internal/core/model"

	_ "modernc.org/sqlite"
)

var (
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrProjectNotFound   = errors.New("project not found")
)

// SQLiteStore persists workspaces, projects, tags and time entries.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Keep a single connection so ":memory:" databases survive across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS workspaces (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	billable_view INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guid TEXT NOT NULL UNIQUE,
	workspace_id INTEGER NOT NULL REFERENCES workspaces(id),
	name TEXT NOT NULL,
	client_name TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	billable INTEGER NOT NULL DEFAULT 0,
	UNIQUE(workspace_id, name)
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL REFERENCES projects(id),
	name TEXT NOT NULL,
	UNIQUE(project_id, name)
);
CREATE TABLE IF NOT EXISTS tags (
	workspace_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY(workspace_id, name)
);
CREATE TABLE IF NOT EXISTS time_entries (
	guid TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	workspace_id INTEGER NOT NULL DEFAULT 0,
	project_id INTEGER NOT NULL DEFAULT 0,
	task_id INTEGER NOT NULL DEFAULT 0,
	billable INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	started TEXT NOT NULL,
	stopped TEXT,
	duration_seconds INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS time_entries_started ON time_entries(started);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertWorkspace inserts or replaces a workspace by ID.
func (s *SQLiteStore) UpsertWorkspace(workspace model.Workspace) error {
	const stmt = `
INSERT INTO workspaces (id, name, billable_view) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name, billable_view = excluded.billable_view;`
	if _, err := s.db.Exec(stmt, workspace.ID, workspace.Name, workspace.BillableView); err != nil {
		return fmt.Errorf("upsert workspace %d: %w", workspace.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Workspace(id uint64) (model.Workspace, error) {
	var workspace model.Workspace
	err := s.db.QueryRow(`SELECT id, name, billable_view FROM workspaces WHERE id = ?;`, id).
		Scan(&workspace.ID, &workspace.Name, &workspace.BillableView)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Workspace{}, ErrWorkspaceNotFound
	}
	if err != nil {
		return model.Workspace{}, fmt.Errorf("query workspace %d: %w", id, err)
	}
	return workspace, nil
}

// EnsureWorkspace creates the workspace with the given name unless it exists.
func (s *SQLiteStore) EnsureWorkspace(id uint64, name string) error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO workspaces (id, name, billable_view) VALUES (?, ?, 0);`, id, name); err != nil {
		return fmt.Errorf("ensure workspace %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) ListWorkspaces() ([]model.Workspace, error) {
	rows, err := s.db.Query(`SELECT id, name, billable_view FROM workspaces ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []model.Workspace
	for rows.Next() {
		var workspace model.Workspace
		if err := rows.Scan(&workspace.ID, &workspace.Name, &workspace.BillableView); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, workspace)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// InsertProject stores a project and returns it with its assigned ID.
func (s *SQLiteStore) InsertProject(project model.Project) (model.Project, error) {
	const stmt = `
INSERT INTO projects (guid, workspace_id, name, client_name, color, billable)
VALUES (?, ?, ?, ?, ?, ?);`
	res, err := s.db.Exec(stmt, project.GUID, project.WorkspaceID, project.Name, project.ClientName, project.Color, project.Billable)
	if err != nil {
		return model.Project{}, fmt.Errorf("insert project %q: %w", project.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Project{}, fmt.Errorf("read project id: %w", err)
	}
	project.ID = uint64(id)
	return project, nil
}

func (s *SQLiteStore) Project(id uint64) (model.Project, error) {
	var project model.Project
	err := s.db.QueryRow(`
SELECT id, guid, workspace_id, name, client_name, color, billable FROM projects WHERE id = ?;`, id).
		Scan(&project.ID, &project.GUID, &project.WorkspaceID, &project.Name, &project.ClientName, &project.Color, &project.Billable)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("query project %d: %w", id, err)
	}
	return project, nil
}

func (s *SQLiteStore) ListProjects() ([]model.Project, error) {
	rows, err := s.db.Query(`
SELECT id, guid, workspace_id, name, client_name, color, billable FROM projects ORDER BY workspace_id, name;`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var project model.Project
		if err := rows.Scan(&project.ID, &project.GUID, &project.WorkspaceID, &project.Name, &project.ClientName, &project.Color, &project.Billable); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// InsertTask stores a task and returns it with its assigned ID.
func (s *SQLiteStore) InsertTask(task model.Task) (model.Task, error) {
	res, err := s.db.Exec(`INSERT INTO tasks (project_id, name) VALUES (?, ?);`, task.ProjectID, task.Name)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task %q: %w", task.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, fmt.Errorf("read task id: %w", err)
	}
	task.ID = uint64(id)
	return task, nil
}

func (s *SQLiteStore) ListTasks() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT id, project_id, name FROM tasks ORDER BY project_id, name;`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(&task.ID, &task.ProjectID, &task.Name); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// AddTags records tag names for a workspace; existing names are ignored.
func (s *SQLiteStore) AddTags(workspaceID uint64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO tags (workspace_id, name) VALUES (?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare tag insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.Exec(workspaceID, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert tag %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTags(workspaceID uint64) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM tags WHERE workspace_id = ? ORDER BY name;`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// InsertTimeEntry stores a new entry. A zero Stopped time means running.
func (s *SQLiteStore) InsertTimeEntry(entry model.TimeEntry) error {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO time_entries (
	guid,
	description,
	workspace_id,
	project_id,
	task_id,
	billable,
	tags,
	started,
	stopped,
	duration_seconds
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err = s.db.Exec(stmt,
		entry.GUID,
		entry.Description,
		entry.WorkspaceID,
		entry.ProjectID,
		entry.TaskID,
		entry.Billable,
		tags,
		entry.Started.UTC().Format(time.RFC3339),
		formatStopped(entry),
		entry.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

// StopTimeEntry closes a running entry at stoppedAt.
func (s *SQLiteStore) StopTimeEntry(guid string, stoppedAt time.Time) (model.TimeEntry, error) {
	entry, err := s.TimeEntry(guid)
	if err != nil {
		return model.TimeEntry{}, err
	}
	if !entry.Running {
		return entry, nil
	}

	entry.DurationSeconds = entry.ElapsedSeconds(stoppedAt)
	entry.Stopped = stoppedAt
	entry.Running = false

	_, err = s.db.Exec(`UPDATE time_entries SET stopped = ?, duration_seconds = ? WHERE guid = ?;`,
		stoppedAt.UTC().Format(time.RFC3339), entry.DurationSeconds, guid)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("stop time entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) UpdateDescription(guid, description string) error {
	return s.updateEntry(guid, `UPDATE time_entries SET description = ? WHERE guid = ?;`, description, guid)
}

func (s *SQLiteStore) UpdateBillable(guid string, billable bool) error {
	return s.updateEntry(guid, `UPDATE time_entries SET billable = ? WHERE guid = ?;`, billable, guid)
}

func (s *SQLiteStore) UpdateTags(guid string, tags []string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	return s.updateEntry(guid, `UPDATE time_entries SET tags = ? WHERE guid = ?;`, encoded, guid)
}

// UpdateProject assigns project and task; the workspace follows the project.
func (s *SQLiteStore) UpdateProject(guid string, projectID, taskID uint64) error {
	const stmt = `
UPDATE time_entries
SET project_id = ?, task_id = ?,
	workspace_id = COALESCE((SELECT workspace_id FROM projects WHERE id = ?), workspace_id)
WHERE guid = ?;`
	return s.updateEntry(guid, stmt, projectID, taskID, projectID, guid)
}

func (s *SQLiteStore) updateEntry(guid, stmt string, args ...any) error {
	res, err := s.db.Exec(stmt, args...)
	if err != nil {
		return fmt.Errorf("update time entry %s: %w", guid, err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return ErrTimeEntryNotFound
	}
	return nil
}

const selectEntries = `
SELECT
	e.guid,
	e.description,
	e.workspace_id,
	e.project_id,
	e.task_id,
	e.billable,
	e.tags,
	e.started,
	COALESCE(e.stopped, ''),
	e.duration_seconds,
	COALESCE(p.guid, ''),
	COALESCE(p.name, ''),
	COALESCE(p.client_name, ''),
	COALESCE(p.color, ''),
	COALESCE(t.name, ''),
	COALESCE(w.billable_view, 0)
FROM time_entries e
LEFT JOIN projects p ON p.id = e.project_id
LEFT JOIN tasks t ON t.id = e.task_id
LEFT JOIN workspaces w ON w.id = e.workspace_id
`

func (s *SQLiteStore) TimeEntry(guid string) (model.TimeEntry, error) {
	entries, err := s.queryEntries(selectEntries+`WHERE e.guid = ?;`, guid)
	if err != nil {
		return model.TimeEntry{}, err
	}
	if len(entries) == 0 {
		return model.TimeEntry{}, ErrTimeEntryNotFound
	}
	return entries[0], nil
}

// RunningTimeEntry returns the most recently started running entry.
func (s *SQLiteStore) RunningTimeEntry() (model.TimeEntry, error) {
	entries, err := s.queryEntries(selectEntries + `WHERE e.stopped IS NULL ORDER BY e.started DESC LIMIT 1;`)
	if err != nil {
		return model.TimeEntry{}, err
	}
	if len(entries) == 0 {
		return model.TimeEntry{}, ErrTimeEntryNotFound
	}
	return entries[0], nil
}

// ListTimeEntries returns entries newest first; limit <= 0 returns all.
func (s *SQLiteStore) ListTimeEntries(limit int) ([]model.TimeEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryEntries(selectEntries+`ORDER BY e.started DESC LIMIT ?;`, limit)
}

func (s *SQLiteStore) queryEntries(query string, args ...any) ([]model.TimeEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimeEntry
	for rows.Next() {
		var (
			entry   model.TimeEntry
			tags    string
			started string
			stopped string
		)
		if err := rows.Scan(
			&entry.GUID,
			&entry.Description,
			&entry.WorkspaceID,
			&entry.ProjectID,
			&entry.TaskID,
			&entry.Billable,
			&tags,
			&started,
			&stopped,
			&entry.DurationSeconds,
			&entry.ProjectGUID,
			&entry.ProjectLabel,
			&entry.ClientLabel,
			&entry.ProjectColor,
			&entry.TaskLabel,
			&entry.CanSeeBillable,
		); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}

		if entry.Started, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse started %q: %w", started, err)
		}
		if stopped == "" {
			entry.Running = true
		} else if entry.Stopped, err = time.Parse(time.RFC3339, stopped); err != nil {
			return nil, fmt.Errorf("parse stopped %q: %w", stopped, err)
		}
		if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", entry.GUID, err)
		}
		if len(entry.Tags) == 0 {
			entry.Tags = nil
		}
		entry.ProjectAndTaskLabel = projectAndTaskLabel(entry.TaskLabel, entry.ProjectLabel)

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}

func projectAndTaskLabel(task, project string) string {
	if task == "" {
		return project
	}
	if project == "" {
		return task
	}
	return task + ". " + project
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(encoded), nil
}

func formatStopped(entry model.TimeEntry) any {
	if entry.Running || entry.Stopped.IsZero() {
		return nil
	}
	return entry.Stopped.UTC().Format(time.RFC3339)
}
