package testsupport

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-document-cache/document"
)

//go:embed testdata/animals.json
var animalsJSON []byte

// ErrStoreDown is the error returned by FailingCollection.
var ErrStoreDown = errors.New(errors.CodeUnavailable, "testsupport: store unavailable")

// Animals returns a fresh copy of the bundled animal shelter fixture.
func Animals(t testing.TB) []document.Document {
	t.Helper()

	docs, err := document.ParseJSONArray(animalsJSON)
	if err != nil {
		t.Fatalf("failed to parse bundled animals fixture: %v", err)
	}
	return docs
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadDocuments loads a JSON array of documents from a fixture file.
func LoadDocuments(t testing.TB, path string) []document.Document {
	t.Helper()

	docs, err := document.ParseJSONArray(LoadFixture(t, path))
	if err != nil {
		t.Fatalf("failed to decode documents from %s: %v", path, err)
	}
	return docs
}

// WriteGolden writes test output to a golden file.
// This should typically only be called when updating golden files.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// CompareDocumentsWithGolden renders docs as indented JSON and compares them
// against a golden file.
func CompareDocumentsWithGolden(t testing.TB, path string, docs []document.Document) {
	t.Helper()

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal documents for golden file %s: %v", path, err)
	}
	CompareWithGolden(t, path, append(data, '\n'))
}

// TempFile creates a temporary file with the given content. It is removed
// when the test finishes.
func TempFile(t testing.TB, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// FixturePath returns the path to a fixture file in the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath returns the path to a golden file in the testdata/golden directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// FailingCollection is a store collection whose every operation fails with
// ErrStoreDown. It records the operations it received.
type FailingCollection struct {
	mu    sync.Mutex
	calls []string
}

// Calls returns the operations received so far.
func (f *FailingCollection) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FailingCollection) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return ErrStoreDown
}

func (f *FailingCollection) Name() string { return "failing" }

func (f *FailingCollection) InsertOne(context.Context, document.Document) error {
	return f.record("insert_one")
}

func (f *FailingCollection) Find(context.Context, document.Filter) ([]document.Document, error) {
	return nil, f.record("find")
}

func (f *FailingCollection) UpdateOne(context.Context, document.Filter, document.Document) (int64, error) {
	return 0, f.record("update_one")
}

func (f *FailingCollection) UpdateMany(context.Context, document.Filter, document.Document) (int64, error) {
	return 0, f.record("update_many")
}

func (f *FailingCollection) DeleteOne(context.Context, document.Filter) (int64, error) {
	return 0, f.record("delete_one")
}

func (f *FailingCollection) DeleteMany(context.Context, document.Filter) (int64, error) {
	return 0, f.record("delete_many")
}

func (f *FailingCollection) Ping(context.Context) error {
	return f.record("ping")
}

func (f *FailingCollection) Close(context.Context) error {
	return nil
}
