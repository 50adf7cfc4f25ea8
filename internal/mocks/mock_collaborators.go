package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/payments"
	"github.com/example/rentalhub/internal/places"
	"github.com/example/rentalhub/internal/storage"
	"github.com/example/rentalhub/pkg/messagequeue"
)

var (
	_ storage.ObjectStore       = (*MockObjectStore)(nil)
	_ places.Client             = (*MockPlacesClient)(nil)
	_ payments.Verifier         = (*MockVerifier)(nil)
	_ messagequeue.MessageQueue = (*MockMessageQueue)(nil)
)

// MockObjectStore records uploads and returns deterministic URLs.
type MockObjectStore struct {
	UploadFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

	mu    sync.Mutex
	Paths []string
}

func (m *MockObjectStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	m.mu.Lock()
	m.Paths = append(m.Paths, objectPath)
	m.mu.Unlock()
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, objectPath, contentType, r)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return "https://storage.test/" + objectPath, nil
}

// Uploads returns the number of Upload calls.
func (m *MockObjectStore) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Paths)
}

// MockPlacesClient implements places.Client.
type MockPlacesClient struct {
	NearbyFunc func(ctx context.Context, center models.GeoPoint, radiusMeters int, types []string) ([]models.Place, error)

	mu    sync.Mutex
	calls int
}

func (m *MockPlacesClient) Nearby(ctx context.Context, center models.GeoPoint, radiusMeters int, types []string) ([]models.Place, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.NearbyFunc != nil {
		return m.NearbyFunc(ctx, center, radiusMeters, types)
	}
	return []models.Place{}, nil
}

func (m *MockPlacesClient) StaticMapURL(center models.GeoPoint) string {
	return fmt.Sprintf("https://maps.test/static?center=%g,%g", center.Lat, center.Lng)
}

// NearbyCalls returns the number of Nearby calls.
func (m *MockPlacesClient) NearbyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockVerifier implements payments.Verifier. The default accepts every request.
type MockVerifier struct {
	VerifyFunc func(ctx context.Context, req payments.Request) (bool, error)
}

func (m *MockVerifier) Verify(ctx context.Context, req payments.Request) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, req)
	}
	return true, nil
}

// MockMessageQueue records published messages.
type MockMessageQueue struct {
	PublishFunc func(ctx context.Context, queueName string, body []byte) error

	mu        sync.Mutex
	Published map[string][][]byte
}

func (m *MockMessageQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, queueName, body)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Published == nil {
		m.Published = map[string][][]byte{}
	}
	m.Published[queueName] = append(m.Published[queueName], body)
	return nil
}

// Messages returns the bodies published to queueName.
func (m *MockMessageQueue) Messages(queueName string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.Published[queueName]...)
}

func (m *MockMessageQueue) Consume(ctx context.Context, _ string, _ messagequeue.Handler) error {
	<-ctx.Done()
	return nil
}

func (m *MockMessageQueue) Close() error { return nil }
