package study

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/store"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("study store is closed")

// Ingester loads a document into a named vector table.
type Ingester interface {
	Ingest(ctx context.Context, doc knowledge.Document, table string) (*knowledge.Handle, error)
}

// AssistantFactory binds the chat and quiz assistants to a loaded document.
type AssistantFactory interface {
	NewAssistants(topic string, kb assistant.Knowledge) (assistant.Responder, quiz.Generator, error)
}

// Options tune a Store. The zero value is usable.
type Options struct {
	// StrictRegenerate rejects GenerateQuiz while a quiz is active instead
	// of discarding it.
	StrictRegenerate bool

	// ReleaseOnClose drops every topic's vector table on Close.
	ReleaseOnClose bool

	// Events records chat exchanges and submitted quizzes. Optional.
	Events store.EventRepo

	Log *logger.Logger

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Store owns all topic sessions of a process.
type Store struct {
	ingester   Ingester
	assistants AssistantFactory
	opts       Options
	log        *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*TopicSession
	order    []string
	creating map[string]*sync.Mutex
	// tables maps each vector table to the topic that owns or is loading it.
	tables   map[string]string
	current  string
	closed   bool
}

func NewStore(ingester Ingester, assistants AssistantFactory, opts Options) *Store {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		ingester:   ingester,
		assistants: assistants,
		opts:       opts,
		log:        opts.Log,
		sessions:   make(map[string]*TopicSession),
		creating:   make(map[string]*sync.Mutex),
		tables:     make(map[string]string),
	}
}

// GetOrCreate returns the session for topic, ingesting doc only when the
// topic is new. Concurrent callers for one topic ingest once. A failed
// attempt leaves no session behind. The returned session becomes current.
func (s *Store) GetOrCreate(ctx context.Context, topic string, doc knowledge.Document) (*TopicSession, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperr.Invalid("topic", "topic name is empty")
	}

	if ts, err := s.existing(topic); ts != nil || err != nil {
		return ts, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	lock, ok := s.creating[topic]
	if !ok {
		lock = &sync.Mutex{}
		s.creating[topic] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Another caller may have finished while we waited.
	if ts, err := s.existing(topic); ts != nil || err != nil {
		return ts, err
	}

	table := s.reserveTable(topic)
	ts, err := s.build(ctx, topic, table, doc)
	if err != nil {
		s.freeTable(table)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		delete(s.tables, table)
		if ts.Knowledge != nil {
			_ = ts.Knowledge.Release(context.WithoutCancel(ctx))
		}
		return nil, ErrClosed
	}
	s.sessions[topic] = ts
	s.order = append(s.order, topic)
	s.current = topic
	delete(s.creating, topic)
	return ts, nil
}

func (s *Store) existing(topic string) (*TopicSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	ts, ok := s.sessions[topic]
	if ok {
		s.current = topic
	}
	return ts, nil
}

// reserveTable picks the vector table for a new topic. Topics whose names
// normalize to the same table get a suffixed one, so no two sessions
// share a table.
func (s *Store) reserveTable(topic string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := knowledge.TableName(topic)
	if _, taken := s.tables[table]; taken {
		table = knowledge.SuffixedTableName(table, topic)
	}
	for {
		if _, taken := s.tables[table]; !taken {
			break
		}
		table = knowledge.RandomTableName()
	}
	s.tables[table] = topic
	return table
}

func (s *Store) freeTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, table)
}

func (s *Store) build(ctx context.Context, topic, table string, doc knowledge.Document) (*TopicSession, error) {
	log := s.log.With("topic", topic)

	start := time.Now()
	handle, err := s.ingester.Ingest(ctx, doc, table)
	if err != nil {
		log.Warn("ingestion failed", "error", err)
		if !apperr.IsIngestion(err) {
			err = apperr.Ingestion("ingest", err)
		}
		return nil, err
	}

	chat, qa, err := s.assistants.NewAssistants(topic, handle)
	if err != nil {
		if relErr := handle.Release(context.WithoutCancel(ctx)); relErr != nil {
			log.Warn("failed to release knowledge", "error", relErr)
		}
		log.Warn("assistant construction failed", "error", err)
		return nil, apperr.Ingestion("build assistants", err)
	}

	log.Info("topic session created", "table", handle.Table, "chunks", handle.Chunks,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &TopicSession{
		Name:      topic,
		Table:     handle.Table,
		Knowledge: handle,
		QA:        qa,
		Chat:      chat,
		CreatedAt: s.opts.Now(),
		Quiz:      quiz.NewState(),
	}, nil
}

// Topics lists topic names in creation order.
func (s *Store) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Select makes topic current.
func (s *Store) Select(topic string) (*TopicSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.sessions[topic]
	if !ok {
		return nil, apperr.NotFound(topic)
	}
	s.current = topic
	return ts, nil
}

// Current returns the current topic, or "" when none is selected.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Lookup returns the session for topic.
func (s *Store) Lookup(topic string) (*TopicSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.sessions[topic]
	if !ok {
		return nil, apperr.NotFound(topic)
	}
	return ts, nil
}

// Session returns a copy of the session's current state.
func (s *Store) Session(topic string) (View, error) {
	ts, err := s.Lookup(topic)
	if err != nil {
		return View{}, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.view(), nil
}

// Remove discards a session and releases its knowledge.
func (s *Store) Remove(ctx context.Context, topic string) error {
	s.mu.Lock()
	ts, ok := s.sessions[topic]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound(topic)
	}
	delete(s.sessions, topic)
	for i, name := range s.order {
		if name == topic {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == topic {
		s.current = ""
	}
	s.mu.Unlock()

	// Wait for any in-flight operation on the topic.
	ts.mu.Lock()
	defer ts.mu.Unlock()
	err := s.release(ctx, ts)

	// The table stays reserved until it is dropped.
	s.freeTable(ts.Table)
	return err
}

func (s *Store) release(ctx context.Context, ts *TopicSession) error {
	var errs []error
	if f, ok := ts.Chat.(interface{ Forget(context.Context) error }); ok {
		if err := f.Forget(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if ts.Knowledge != nil {
		if err := ts.Knowledge.Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.log.Warn("failed to release topic", "topic", ts.Name, "error", err)
	}
	return err
}

// Close empties the store. Knowledge tables are dropped only when
// ReleaseOnClose is set.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sessions := make([]*TopicSession, 0, len(s.order))
	for _, name := range s.order {
		sessions = append(sessions, s.sessions[name])
	}
	s.sessions = make(map[string]*TopicSession)
	s.tables = make(map[string]string)
	s.order = nil
	s.current = ""
	s.mu.Unlock()

	if !s.opts.ReleaseOnClose {
		return nil
	}
	var errs []error
	for _, ts := range sessions {
		ts.mu.Lock()
		if err := s.release(ctx, ts); err != nil {
			errs = append(errs, err)
		}
		ts.mu.Unlock()
	}
	return errors.Join(errs...)
}
