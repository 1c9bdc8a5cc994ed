package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Memory es un ObjectStorage en memoria para modo demo y tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
}

// NewMemory crea un bucket en memoria. baseURL se usa para PublicURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *Memory) Put(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()
	return m.PublicURL(path), nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.objects, path)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PublicURL(path string) string {
	return m.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Has indica si el objeto existe (solo tests).
func (m *Memory) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

// Len retorna la cantidad de objetos (solo tests).
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
