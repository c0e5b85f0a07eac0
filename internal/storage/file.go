package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileSink keeps every record in a single JSON array file, or a YAML
// sequence when the path ends in .yaml or .yml.
type FileSink struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewFileSink(path string, logger *zap.Logger) *FileSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{path: path, logger: logger}
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Append adds rec after the records already stored. Unreadable prior content
// is treated as an empty list.
func (s *FileSink) Append(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.read()
	records = append(records, rec)

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(records)
	} else {
		data, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing records to %q: %w", s.path, err)
	}

	s.logger.Info("screening record saved",
		zap.String("path", s.path),
		zap.String("record_id", rec.ID),
		zap.Int("records", len(records)),
	)
	return nil
}

// Load returns the stored records, recovering leniently from corrupt content.
func (s *FileSink) Load(_ context.Context) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *FileSink) Close() error { return nil }

func (s *FileSink) read() []*Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("reading records failed, starting with an empty list", zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var (
		records []*Record
		skipped int
	)
	if s.isYAML() {
		records, skipped, err = decodeYAMLRecords(data)
	} else {
		records, skipped, err = decodeJSONRecords(data)
	}
	if err != nil {
		s.logger.Warn("stored records are corrupt, starting with an empty list", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable stored records", zap.String("path", s.path), zap.Int("skipped", skipped))
	}
	return records
}

func decodeJSONRecords(data []byte) ([]*Record, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, err
	}

	records := make([]*Record, 0, len(items))
	skipped := 0
	for _, item := range items {
		rec, ok := decodeJSONRecord(item)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeYAMLRecords(data []byte) ([]*Record, int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, 0, fmt.Errorf("expected a sequence of records at line %d", root.Line)
	}

	records := make([]*Record, 0, len(root.Content))
	skipped := 0
	for _, item := range root.Content {
		rec, ok := decodeYAMLRecord(item)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeYAMLRecord(node *yaml.Node) (*Record, bool) {
	if node.Kind != yaml.MappingNode {
		return nil, false
	}

	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return nil, false
	}

	rec := &Record{}
	if err := decodeFields(fields, rec); err != nil {
		return nil, false
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != answersKey {
			continue
		}
		if err := node.Content[i+1].Decode(&rec.ScreeningAnswers); err != nil {
			return nil, false
		}
	}

	return rec, true
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
