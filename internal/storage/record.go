package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/talentscout/internal/screening"
)

const answersKey = "screening_answers"

// Record is one persisted screening: the profile fields flattened next to the grouped answers.
type Record struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	screening.Profile `yaml:",inline"`

	ScreeningAnswers screening.AnswersByTechnology `json:"screening_answers" yaml:"screening_answers"`
}

// NewRecord stamps a finished screening with an id and completion time.
func NewRecord(profile screening.Profile, answers *screening.AnswersByTechnology) *Record {
	rec := &Record{
		ID:          uuid.NewString(),
		CompletedAt: time.Now().UTC(),
		Profile:     profile,
	}
	if answers != nil {
		rec.ScreeningAnswers = *answers.Clone()
	}
	return rec
}

// Sink persists finished screenings and lists them back.
type Sink interface {
	Append(ctx context.Context, rec *Record) error
	Load(ctx context.Context) ([]*Record, error)
	Close() error
}

// sessionSink adapts a Sink to screening.RecordSink.
type sessionSink struct {
	sink Sink
}

// ForSession exposes sink as the record sink of a screening session.
func ForSession(sink Sink) screening.RecordSink {
	return &sessionSink{sink: sink}
}

func (s *sessionSink) AppendRecord(ctx context.Context, profile screening.Profile, answers *screening.AnswersByTechnology) error {
	return s.sink.Append(ctx, NewRecord(profile, answers))
}

// decodeFields fills the scalar part of a record from a generic map. Values
// written by hand or by older tools may carry numbers or other non-string
// types, which are coerced instead of rejected.
func decodeFields(fields map[string]any, rec *Record) error {
	delete(fields, answersKey)

	cfg := &mapstructure.DecoderConfig{
		Result:           rec,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("decode record fields: %w", err)
	}
	return nil
}

// decodeJSONRecord decodes one array element. ok is false when the element is
// not a usable record.
func decodeJSONRecord(raw json.RawMessage) (*Record, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}

	rec := &Record{}
	if err := decodeFields(fields, rec); err != nil {
		return nil, false
	}

	var envelope struct {
		Answers screening.AnswersByTechnology `json:"screening_answers"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		rec.ScreeningAnswers = envelope.Answers
	}

	return rec, true
}
