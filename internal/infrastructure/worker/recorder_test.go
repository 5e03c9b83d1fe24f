package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
)

type memValidationRepo struct {
	mu      sync.Mutex
	records []domain.ValidationRecord
	delay   time.Duration
	err     error
}

func (m *memValidationRepo) Insert(_ context.Context, rec *domain.ValidationRecord) (int64, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return int64(len(m.records)), nil
}

func (m *memValidationRepo) ListByUser(_ context.Context, userID int64, _ int) ([]domain.ValidationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ValidationRecord
	for _, r := range m.records {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memValidationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func userRecord(id int64, text string) domain.ValidationRecord {
	return domain.ValidationRecord{UserID: &id, Text: text, Classification: "Unclear", CreatedAt: time.Now()}
}

func TestRecorder_StopDrainsQueue(t *testing.T) {
	repo := &memValidationRepo{delay: time.Millisecond}
	r := NewRecorder(2, repo, zerolog.Nop())
	r.Start()

	for i := 0; i < 50; i++ {
		if err := r.Record(context.Background(), userRecord(int64(i%5), "t")); err != nil {
			t.Fatalf("record %d failed: %v", i, err)
		}
	}
	if err := r.Record(context.Background(), domain.ValidationRecord{Text: "anon"}); err != nil {
		t.Fatalf("anonymous record failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if repo.count() != 51 {
		t.Fatalf("expected 51 persisted records, got %d", repo.count())
	}
}

func TestRecorder_PreservesPerUserOrder(t *testing.T) {
	repo := &memValidationRepo{}
	r := NewRecorder(4, repo, zerolog.Nop())
	r.Start()

	texts := []string{"first", "second", "third", "fourth"}
	for _, txt := range texts {
		_ = r.Record(context.Background(), userRecord(9, txt))
	}
	_ = r.Stop(context.Background())

	recs, _ := repo.ListByUser(context.Background(), 9, 0)
	if len(recs) != len(texts) {
		t.Fatalf("expected %d records, got %d", len(texts), len(recs))
	}
	for i, txt := range texts {
		if recs[i].Text != txt {
			t.Errorf("position %d: expected %q, got %q", i, txt, recs[i].Text)
		}
	}
}

func TestRecorder_RejectsAfterStop(t *testing.T) {
	r := NewRecorder(1, &memValidationRepo{}, zerolog.Nop())
	r.Start()
	_ = r.Stop(context.Background())

	if err := r.Record(context.Background(), userRecord(1, "late")); !errors.Is(err, ErrRecorderClosed) {
		t.Fatalf("expected ErrRecorderClosed, got %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("second stop must be a no-op, got %v", err)
	}
}

func TestRecorder_RecordHonoursContextWhenFull(t *testing.T) {
	// Not started, so the single shard fills up.
	r := NewRecorder(1, &memValidationRepo{}, zerolog.Nop())
	for i := 0; i < channelBuffer; i++ {
		if err := r.Record(context.Background(), userRecord(1, "fill")); err != nil {
			t.Fatalf("fill %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Record(ctx, userRecord(1, "overflow")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRecorder_InsertErrorsAreLoggedNotFatal(t *testing.T) {
	repo := &memValidationRepo{err: errors.New("disk full")}
	r := NewRecorder(1, repo, zerolog.Nop())
	r.Start()

	if err := r.Record(context.Background(), userRecord(1, "x")); err != nil {
		t.Fatalf("record must accept while running, got %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestRecorder_ShardIndexIsStable(t *testing.T) {
	r := NewRecorder(8, &memValidationRepo{}, zerolog.Nop())
	a := r.shardIndex("user:42")
	for i := 0; i < 10; i++ {
		if r.shardIndex("user:42") != a {
			t.Fatal("shard index must be deterministic")
		}
	}
	if idx := r.shardIndex("anonymous"); idx < 0 || idx >= 8 {
		t.Fatalf("shard index out of range: %d", idx)
	}
}
