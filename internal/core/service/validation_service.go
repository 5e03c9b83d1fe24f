package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

// MaxTextLength caps the characters accepted for a single analysis.
const MaxTextLength = 20000

type validationService struct {
	gateway  ports.ValidationGateway
	recorder ports.ValidationRecorder
	log      zerolog.Logger
}

// NewValidationService returns a ValidationService implementation.
func NewValidationService(
	gateway ports.ValidationGateway,
	recorder ports.ValidationRecorder,
	log zerolog.Logger,
) ports.ValidationService {
	return &validationService{
		gateway:  gateway,
		recorder: recorder,
		log:      log,
	}
}

// Analyze forwards text to the gateway and records the verdict.
func (s *validationService) Analyze(ctx context.Context, in ports.AnalyzeInput) (*domain.Analysis, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.NewInputError("Please enter some text to validate")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, domain.NewInputError(fmt.Sprintf("text must be at most %d characters", MaxTextLength))
	}

	source := strings.TrimSpace(in.Source)
	var src *string
	if source != "" {
		src = &source
	}

	analysis, err := s.gateway.Analyze(ctx, text, src)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if analysis.Reasons == nil {
		analysis.Reasons = []string{}
	}

	rec := domain.ValidationRecord{
		UserID:         in.UserID,
		Text:           text,
		SourceURL:      source,
		Score:          analysis.Score,
		Classification: analysis.Classification.Label,
		Reasons:        analysis.Reasons,
		CreatedAt:      time.Now().UTC(),
	}
	// The audit trail is best-effort; the caller still gets the verdict.
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("owner", rec.OwnerKey()).Msg("failed to record validation")
	}

	s.log.Info().
		Str("owner", rec.OwnerKey()).
		Str("classification", analysis.Classification.Label).
		Float64("score", analysis.Score).
		Msg("text analyzed")

	return analysis, nil
}
