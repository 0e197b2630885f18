package service

import (
	"context"
	"log"
	"time"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/repository"
)

const (
	persistTimeout = 5 * time.Second
	idWaitTimeout  = 2 * time.Second
)

// sessionGateway persists answers, events and completion codes for one
// session. Every write runs on its own goroutine with a bounded context;
// failures are logged and dropped so navigation never stalls on storage.
type sessionGateway struct {
	sessionID string
	responses repository.ResponseRepo
	events    repository.EventRepo
	sessions  repository.SessionRepo
}

func (g *sessionGateway) RecordAnswers(records []*model.AnswerRecord) {
	now := time.Now()
	snapshots := make([]model.ResponseSnapshot, 0, len(records))
	for _, rec := range records {
		snapshots = append(snapshots, model.ResponseSnapshot{
			SessionID:  g.sessionID,
			Question:   rec.Question,
			Group:      rec.Group,
			Response:   rec.Response,
			Emotions:   rec.Emotions,
			RecordedAt: now,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := g.responses.InsertBatch(ctx, snapshots); err != nil {
			log.Printf("Session %s: failed to persist %d responses: %v", g.sessionID, len(snapshots), err)
		}
	}()
}

func (g *sessionGateway) RecordEvent(name string) {
	event := model.Event{
		SessionID: g.sessionID,
		Name:      name,
		At:        time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := g.events.Insert(ctx, event); err != nil {
			log.Printf("Session %s: failed to persist event %s: %v", g.sessionID, name, err)
		}
	}()
}

func (g *sessionGateway) RecordCompletionCode(code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := g.sessions.SetCompletionCode(ctx, g.sessionID, code); err != nil {
			log.Printf("Session %s: failed to persist completion code: %v", g.sessionID, err)
		}
	}()
}

// participantID resolves the participant counter in the background so
// session startup does not block on the database. Readers wait a bounded
// time; if allocation is still pending or failed, the id is 0.
type participantID struct {
	result chan int64
	val    int64
	ok     bool
}

func allocateParticipantID(repo repository.ParticipantRepo) *participantID {
	p := &participantID{result: make(chan int64, 1)}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		id, err := repo.NextID(ctx)
		if err != nil {
			log.Printf("Failed to allocate participant id: %v", err)
			close(p.result)
			return
		}
		p.result <- id
	}()
	return p
}

func (p *participantID) wait(d time.Duration) int64 {
	if p.ok {
		return p.val
	}
	select {
	case id, open := <-p.result:
		if open {
			p.val = id
			p.ok = true
		}
	case <-time.After(d):
	}
	return p.val
}

// ParticipantKey implements catalog.KeyProvider.
func (p *participantID) ParticipantKey() int {
	return int(p.wait(idWaitTimeout))
}
