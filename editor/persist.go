package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/internal/notes"
)

// Store persists note content. *notes.Store implements it.
type Store interface {
	UpdateNote(ctx context.Context, id int64, p notes.Patch) error
}

// saver writes the document back as Markdown after content changes,
// skipping writes whose Markdown hashes the same as the last one stored.
type saver struct {
	store   Store
	id      int64
	timeout time.Duration
	buf     *buffer.Buffer
	log     *slog.Logger

	lastHash uint64
	dirty    bool
	err      error
}

func newSaver(cfg Config, buf *buffer.Buffer) *saver {
	return &saver{
		store:    cfg.Store,
		id:       cfg.NoteID,
		timeout:  cfg.SaveTimeout,
		buf:      buf,
		log:      cfg.Logger,
		lastHash: xxhash.Sum64String(buf.Markdown()),
	}
}

// Observe marks the document dirty after content changes.
func (s *saver) Observe(c buffer.Change) {
	if c.ContentChanged() {
		s.dirty = true
	}
}

// flush saves a dirty document. force saves even when nothing changed
// since the last flush, but an unchanged hash still skips the write.
func (s *saver) flush(force bool) (saved bool, err error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	if !s.dirty && !force {
		return false, nil
	}
	s.dirty = false

	md := s.buf.Markdown()
	h := xxhash.Sum64String(md)
	if h == s.lastHash {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.UpdateNote(ctx, s.id, notes.Patch{Content: &md}); err != nil {
		s.dirty = true
		s.log.Error("save note", "id", s.id, "err", err)
		return false, fmt.Errorf("save note %d: %w", s.id, err)
	}
	s.lastHash = h
	s.log.Debug("note saved", "id", s.id, "bytes", len(md))
	return true, nil
}
