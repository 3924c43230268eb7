package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/vouchrit/tally"
)

var ErrNotFound = errors.New("snapshot: not found")

// CatalogStore persists prefetched catalogs per company.
type CatalogStore interface {
	LoadCatalog(ctx context.Context, companyID string) (Snapshot, error)
	SaveCatalog(ctx context.Context, companyID string, s Snapshot) error
}

// InvoiceStore keeps invoices that were posted to Tally.
type InvoiceStore interface {
	SaveInvoice(ctx context.Context, companyID, fileID string, inv tally.Invoice, userID string) error
}

// HistoryStore records the outcome of every banking post.
type HistoryStore interface {
	AppendHistory(ctx context.Context, companyID string, e HistoryEntry) error
	History(ctx context.Context, companyID string) ([]HistoryEntry, error)
}

// HistoryEntry is one banking voucher attempt.
type HistoryEntry struct {
	ID      string               `json:"id"`
	RunID   string               `json:"runId,omitempty"`
	At      time.Time            `json:"at"`
	Request tally.BankingRequest `json:"request"`
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
}

// NewHistoryEntry stamps an entry with a fresh id and the current time.
func NewHistoryEntry(runID string, req tally.BankingRequest, success bool, message string) HistoryEntry {
	return HistoryEntry{
		ID:      uuid.NewString(),
		RunID:   runID,
		At:      time.Now().UTC(),
		Request: req,
		Success: success,
		Message: message,
	}
}

type savedInvoice struct {
	CompanyID string        `json:"companyId"`
	FileID    string        `json:"fileId"`
	UserID    string        `json:"userId"`
	SavedAt   time.Time     `json:"savedAt"`
	Invoice   tally.Invoice `json:"invoice"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileName(id string) string {
	name := unsafeName.ReplaceAllString(id, "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return name
}

// FileStore keeps catalogs as brotli compressed JSON, invoices as JSON files
// and banking history as JSON lines under one directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) catalogPath(companyID string) string {
	return filepath.Join(s.dir, "catalogs", fileName(companyID)+".json.br")
}

// LoadCatalog reads the catalog saved for companyID.
func (s *FileStore) LoadCatalog(_ context.Context, companyID string) (Snapshot, error) {
	f, err := os.Open(s.catalogPath(companyID))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(brotli.NewReader(f)).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode catalog %s: %w", companyID, err)
	}
	return snap, nil
}

// SaveCatalog replaces the catalog of companyID.
func (s *FileStore) SaveCatalog(_ context.Context, companyID string, snap Snapshot) error {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return writeFile(s.catalogPath(companyID), buf.Bytes())
}

// SaveInvoice writes inv to invoices/<company>/<file>.json.
func (s *FileStore) SaveInvoice(_ context.Context, companyID, fileID string, inv tally.Invoice, userID string) error {
	if fileID == "" {
		fileID = uuid.NewString()
	}
	data, err := json.MarshalIndent(savedInvoice{
		CompanyID: companyID,
		FileID:    fileID,
		UserID:    userID,
		SavedAt:   time.Now().UTC(),
		Invoice:   inv,
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, "invoices", fileName(companyID), fileName(fileID)+".json"), data)
}

func (s *FileStore) historyPath(companyID string) string {
	return filepath.Join(s.dir, "history", fileName(companyID)+".jsonl")
}

// AppendHistory adds e to the history of companyID.
func (s *FileStore) AppendHistory(_ context.Context, companyID string, e HistoryEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.historyPath(companyID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// History returns the history of companyID, oldest first.
func (s *FileStore) History(_ context.Context, companyID string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.historyPath(companyID))
	if errors.Is(err, os.ErrNotExist) {
		return []HistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readHistory(f)
}

func readHistory(r io.Reader) ([]HistoryEntry, error) {
	out := []HistoryEntry{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		var e HistoryEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("snapshot: history line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
