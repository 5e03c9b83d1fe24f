package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

type stubGateway struct {
	fn    func(ctx context.Context, text string, source *string) (*domain.Analysis, error)
	calls int
}

func (g *stubGateway) Analyze(ctx context.Context, text string, source *string) (*domain.Analysis, error) {
	g.calls++
	return g.fn(ctx, text, source)
}

type stubRecorder struct {
	records []domain.ValidationRecord
	err     error
}

func (r *stubRecorder) Record(_ context.Context, rec domain.ValidationRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func okGateway() *stubGateway {
	return &stubGateway{fn: func(_ context.Context, _ string, _ *string) (*domain.Analysis, error) {
		return &domain.Analysis{
			Score:          0.82,
			Classification: domain.Classification{Label: "Likely reliable", Tone: domain.ToneGood},
			Reasons:        []string{"cites sources"},
			Confidence:     0.9,
		}, nil
	}}
}

func TestValidationService_Analyze_Success(t *testing.T) {
	gw := okGateway()
	rec := &stubRecorder{}
	svc := NewValidationService(gw, rec, zerolog.Nop())

	uid := int64(3)
	got, err := svc.Analyze(context.Background(), ports.AnalyzeInput{
		Text:   "  The council approved the budget.  ",
		Source: "https://news.example.com/a",
		UserID: &uid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 0.82 || got.Classification.Tone != domain.ToneGood {
		t.Fatalf("unexpected analysis: %+v", got)
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(rec.records))
	}
	r := rec.records[0]
	if r.Text != "The council approved the budget." {
		t.Errorf("expected trimmed text, got %q", r.Text)
	}
	if r.UserID == nil || *r.UserID != 3 {
		t.Errorf("expected user id 3, got %v", r.UserID)
	}
	if r.SourceURL != "https://news.example.com/a" || r.Classification != "Likely reliable" {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestValidationService_Analyze_EmptyText(t *testing.T) {
	gw := okGateway()
	svc := NewValidationService(gw, &stubRecorder{}, zerolog.Nop())

	for _, text := range []string{"", "   \n\t"} {
		_, err := svc.Analyze(context.Background(), ports.AnalyzeInput{Text: text})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if err.Error() != "Please enter some text to validate" {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
	if gw.calls != 0 {
		t.Errorf("gateway must not be called for empty text, got %d calls", gw.calls)
	}
}

func TestValidationService_Analyze_TooLong(t *testing.T) {
	gw := okGateway()
	svc := NewValidationService(gw, &stubRecorder{}, zerolog.Nop())

	_, err := svc.Analyze(context.Background(), ports.AnalyzeInput{Text: strings.Repeat("a", MaxTextLength+1)})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway must not be called")
	}
}

func TestValidationService_Analyze_EmptySourceIsNil(t *testing.T) {
	var seen *string
	gw := &stubGateway{fn: func(_ context.Context, _ string, source *string) (*domain.Analysis, error) {
		seen = source
		return &domain.Analysis{}, nil
	}}
	svc := NewValidationService(gw, &stubRecorder{}, zerolog.Nop())

	got, err := svc.Analyze(context.Background(), ports.AnalyzeInput{Text: "hello", Source: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != nil {
		t.Errorf("expected nil source, got %q", *seen)
	}
	if got.Reasons == nil {
		t.Errorf("expected empty reasons slice, got nil")
	}
}

func TestValidationService_Analyze_GatewayError(t *testing.T) {
	gw := &stubGateway{fn: func(_ context.Context, _ string, _ *string) (*domain.Analysis, error) {
		return nil, &domain.GatewayError{StatusCode: 400, Msg: "Text is too short"}
	}}
	rec := &stubRecorder{}
	svc := NewValidationService(gw, rec, zerolog.Nop())

	_, err := svc.Analyze(context.Background(), ports.AnalyzeInput{Text: "hi"})
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Msg != "Text is too short" {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if len(rec.records) != 0 {
		t.Errorf("failed analyses must not be recorded")
	}
}

func TestValidationService_Analyze_RecorderFailureIsIgnored(t *testing.T) {
	svc := NewValidationService(okGateway(), &stubRecorder{err: errors.New("queue closed")}, zerolog.Nop())

	if _, err := svc.Analyze(context.Background(), ports.AnalyzeInput{Text: "hello"}); err != nil {
		t.Fatalf("recorder failure must not fail the request, got %v", err)
	}
}
