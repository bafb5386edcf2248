package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taskboard-app/taskboard/internal/models"
)

// snapshot is the durable on-disk shape: the full dataset plus the id
// counter, rewritten wholesale after every mutation.
type snapshot struct {
	Users  []*models.User  `json:"users"`
	Boards []*models.Board `json:"boards"`
	Tasks  []*models.Task  `json:"tasks"`
	NextID int64           `json:"nextId"`
}

// Store holds the authoritative copy of all users, boards and tasks. Every
// mutation runs under one mutex and ends with a full snapshot write, so a
// call that returned without error is durable.
type Store struct {
	mu   sync.Mutex
	path string
	data snapshot
}

// Open loads the snapshot at path, or starts empty if the file is missing or
// unreadable. Load problems are logged, never fatal.
func Open(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

func (s *Store) load() {
	s.data = snapshot{NextID: 1}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading store file %s: %v", s.path, err)
		}
		return
	}

	var data snapshot
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("Error parsing store file %s: %v", s.path, err)
		return
	}
	if data.NextID < 1 {
		data.NextID = 1
	}
	s.data = data
}

// persist rewrites the whole dataset. Callers must hold s.mu.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// nextID allocates from the single counter shared by users, boards and
// tasks. The counter is part of the snapshot, so ids are never reused across
// restarts. Callers must hold s.mu.
func (s *Store) nextID() int64 {
	id := s.data.NextID
	s.data.NextID++
	return id
}

// CreateUser stores a new user. Duplicate-email rejection is the caller's
// responsibility; the store does not check.
func (s *Store) CreateUser(email, passwordHash, name string, createdAt time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &models.User{
		ID:           s.nextID(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    createdAt,
	}
	s.data.Users = append(s.data.Users, user)
	if err := s.persist(); err != nil {
		return nil, err
	}
	c := *user
	return &c, nil
}

// FindUserByEmail does an exact-match linear scan.
func (s *Store) FindUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.data.Users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *Store) FindUserByID(id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.data.Users {
		if user.ID == id {
			c := *user
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

// CreateBoard stores a new board with a server-assigned creation timestamp.
// The owner must exist.
func (s *Store) CreateBoard(name, description string, userID int64) (*models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(userID) == nil {
		return nil, ErrUserNotFound
	}
	board := s.addBoard(name, description, userID, time.Now().UTC())
	if err := s.persist(); err != nil {
		return nil, err
	}
	c := *board
	return &c, nil
}

// BoardsByUserID returns the user's boards in insertion order.
func (s *Store) BoardsByUserID(userID int64) []*models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards := []*models.Board{}
	for _, board := range s.data.Boards {
		if board.UserID == userID {
			c := *board
			boards = append(boards, &c)
		}
	}
	return boards
}

func (s *Store) FindBoardByID(id int64) (*models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if board := s.findBoard(id); board != nil {
		c := *board
		return &c, nil
	}
	return nil, ErrBoardNotFound
}

// BoardUpdate carries the fields a board update may change. Nil fields are
// left untouched.
type BoardUpdate struct {
	Name        *string
	Description *string
}

// UpdateBoard merges the provided fields into the board. ID, UserID and
// CreatedAt are immutable.
func (s *Store) UpdateBoard(id int64, upd BoardUpdate) (*models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.findBoard(id)
	if board == nil {
		return nil, ErrBoardNotFound
	}
	if upd.Name != nil {
		board.Name = *upd.Name
	}
	if upd.Description != nil {
		board.Description = *upd.Description
	}
	if err := s.persist(); err != nil {
		return nil, err
	}
	c := *board
	return &c, nil
}

// DeleteBoard removes the board and every task referencing it in the same
// snapshot write. Returns false if no board has that id.
func (s *Store) DeleteBoard(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, board := range s.data.Boards {
		if board.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	s.data.Boards = append(s.data.Boards[:idx], s.data.Boards[idx+1:]...)

	kept := s.data.Tasks[:0]
	for _, task := range s.data.Tasks {
		if task.BoardID != id {
			kept = append(kept, task)
		}
	}
	s.data.Tasks = kept

	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// CreateTask stores a new task under an existing board. Status always starts
// pending, whatever the caller asked for upstream.
func (s *Store) CreateTask(title, description string, boardID int64, dueDate *time.Time) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findBoard(boardID) == nil {
		return nil, ErrBoardNotFound
	}
	task := s.addTask(title, description, boardID, dueDate, time.Now().UTC())
	if err := s.persist(); err != nil {
		return nil, err
	}
	c := *task
	return &c, nil
}

// TasksByBoardID returns the board's tasks in insertion order.
func (s *Store) TasksByBoardID(boardID int64) []*models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := []*models.Task{}
	for _, task := range s.data.Tasks {
		if task.BoardID == boardID {
			c := *task
			tasks = append(tasks, &c)
		}
	}
	return tasks
}

func (s *Store) FindTaskByID(id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task := s.findTask(id); task != nil {
		c := *task
		return &c, nil
	}
	return nil, ErrTaskNotFound
}

// TaskUpdate carries the fields a task update may change. Nil fields are
// left untouched; DueDateSet distinguishes "clear the due date" from
// "leave it alone".
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	DueDate     *time.Time
	DueDateSet  bool
}

// UpdateTask merges the provided fields into the task. ID, BoardID and
// CreatedAt are immutable.
func (s *Store) UpdateTask(id int64, upd TaskUpdate) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(id)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.DueDateSet {
		task.DueDate = upd.DueDate
	}
	if err := s.persist(); err != nil {
		return nil, err
	}
	c := *task
	return &c, nil
}

// DeleteTask removes one task. Returns false if no task has that id.
func (s *Store) DeleteTask(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.data.Tasks {
		if task.ID == id {
			s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
			if err := s.persist(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) findUser(id int64) *models.User {
	for _, user := range s.data.Users {
		if user.ID == id {
			return user
		}
	}
	return nil
}

func (s *Store) findBoard(id int64) *models.Board {
	for _, board := range s.data.Boards {
		if board.ID == id {
			return board
		}
	}
	return nil
}

func (s *Store) findTask(id int64) *models.Task {
	for _, task := range s.data.Tasks {
		if task.ID == id {
			return task
		}
	}
	return nil
}

// addBoard and addTask append without persisting so seeding can batch one
// write. Callers must hold s.mu.
func (s *Store) addBoard(name, description string, userID int64, createdAt time.Time) *models.Board {
	board := &models.Board{
		ID:          s.nextID(),
		Name:        name,
		Description: description,
		UserID:      userID,
		CreatedAt:   createdAt,
	}
	s.data.Boards = append(s.data.Boards, board)
	return board
}

func (s *Store) addTask(title, description string, boardID int64, dueDate *time.Time, createdAt time.Time) *models.Task {
	task := &models.Task{
		ID:          s.nextID(),
		Title:       title,
		Description: description,
		BoardID:     boardID,
		DueDate:     dueDate,
		Status:      models.TaskStatusPending,
		CreatedAt:   createdAt,
	}
	s.data.Tasks = append(s.data.Tasks, task)
	return task
}
