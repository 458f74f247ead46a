package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proseplay/proseplay/play"
	"github.com/proseplay/proseplay/session"
)

// triggerLog collects the functions triggered by a document until the next response drains them.
type triggerLog struct {
	mu       sync.Mutex
	triggers []play.Trigger
}

func (l *triggerLog) record(t play.Trigger) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.triggers = append(l.triggers, t)
}

func (l *triggerLog) drain() []play.Trigger {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.triggers
	l.triggers = nil
	return out
}

// liveDocument is a played document kept in memory between requests.
type liveDocument struct {
	// mu serializes the mutation of the document with saving its session.
	mu sync.Mutex

	doc      *play.Document
	triggers *triggerLog
	session  session.PlaySession

	// expiresAt is guarded by liveDocuments.mu.
	expiresAt time.Time
}

// snapshotSession copies the current selection into the session.
func (live *liveDocument) snapshotSession() session.PlaySession {
	live.session.CurrentIndexes = live.doc.CurrentIndexes()
	live.session.Expanded = live.doc.IsExpanded()
	return live.session
}

type liveDocuments struct {
	mu   sync.Mutex
	docs map[string]*liveDocument
}

func newLiveDocuments() *liveDocuments {
	return &liveDocuments{docs: make(map[string]*liveDocument)}
}

// get returns nil for a missing or expired document.
func (d *liveDocuments) get(id string, now time.Time) *liveDocument {
	d.mu.Lock()
	defer d.mu.Unlock()

	live, ok := d.docs[id]
	if !ok {
		return nil
	}

	if now.After(live.expiresAt) {
		delete(d.docs, id)
		return nil
	}

	return live
}

// put keeps the document unless a live one with the same id is already kept,
// and returns the kept document.
func (d *liveDocuments) put(id string, live *liveDocument, expiresAt time.Time) *liveDocument {
	d.mu.Lock()
	defer d.mu.Unlock()

	if kept, ok := d.docs[id]; ok && !time.Now().After(kept.expiresAt) {
		return kept
	}

	live.expiresAt = expiresAt
	d.docs[id] = live
	return live
}

// touch extends the expiry of a kept document.
func (d *liveDocuments) touch(live *liveDocument, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if expiresAt.After(live.expiresAt) {
		live.expiresAt = expiresAt
	}
}

func (d *liveDocuments) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.docs, id)
}

// buildDocument parses the source and binds every referenced function to the trigger log.
func (service *Service) buildDocument(s session.PlaySession) *liveDocument {
	opts := append([]play.Option{play.WithStrict()}, service.playOptions...)
	doc := play.Parse(s.Source, opts...)

	live := &liveDocument{
		doc:      doc,
		triggers: &triggerLog{},
		session:  s,
	}

	for _, name := range doc.FunctionNames() {
		doc.SetFunction(name, live.triggers.record)
	}

	return live
}

// openDocument creates a new live document, which is not saved yet.
func (service *Service) openDocument(source, sample string) *liveDocument {
	now := time.Now()

	live := service.buildDocument(session.PlaySession{
		ID:        uuid.NewString(),
		Source:    source,
		Sample:    sample,
		CreatedAt: now,
		ExpiresAt: now.Add(service.config.SessionTTL),
	})

	live.session.CurrentIndexes = live.doc.CurrentIndexes()

	return live
}

// lookupDocument returns the live document, rehydrating it from the session store
// if it's not in memory. Concurrent rehydrations of one session share the first kept document.
func (service *Service) lookupDocument(ctx context.Context, id string) (*liveDocument, error) {
	if live := service.docs.get(id, time.Now()); live != nil {
		return live, nil
	}

	s, err := service.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	live := service.buildDocument(*s)

	// the text is the same, so the state always matches unless the session is corrupted
	if err := live.doc.Restore(s.CurrentIndexes); err != nil {
		return nil, fmt.Errorf("cannot restore document %s: %w", id, err)
	}

	if s.Expanded {
		live.doc.Expand()
	}

	return service.docs.put(id, live, s.ExpiresAt), nil
}

// saveDocument stores the current state and extends the session.
// It must be called with live.mu held.
func (service *Service) saveDocument(ctx context.Context, live *liveDocument) error {
	expiresAt := time.Now().Add(service.config.SessionTTL)
	live.session.ExpiresAt = expiresAt

	if err := service.store.SaveSession(ctx, live.snapshotSession(), service.config.SessionTTL); err != nil {
		return err
	}

	service.docs.touch(live, expiresAt)
	return nil
}
