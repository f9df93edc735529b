package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/client"
)

// Fields набор атрибутов записи для создания и обновления
type Fields map[string]any

func (f Fields) clone() Fields {
	if f == nil {
		return nil
	}
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// Backend источник записей ресурса
type Backend interface {
	List(ctx context.Context, query client.Query) client.Result
	Create(ctx context.Context, fields Fields) client.Result
	Update(ctx context.Context, id string, fields Fields) client.Result
	Delete(ctx context.Context, id string) client.Result
}

// Operations операции каталога для удаленного ресурса
type Operations struct {
	List   client.Operation
	Create client.Operation
	Update client.Operation
	Delete client.Operation
}

// RemoteBackend работает с ресурсом через APIClient
type RemoteBackend struct {
	api client.Dispatcher
	ops Operations
}

// NewRemoteBackend создает RemoteBackend
func NewRemoteBackend(api client.Dispatcher, ops Operations) *RemoteBackend {
	return &RemoteBackend{api: api, ops: ops}
}

func (b *RemoteBackend) List(ctx context.Context, query client.Query) client.Result {
	return b.api.Dispatch(ctx, b.ops.List, client.Request{Query: query})
}

func (b *RemoteBackend) Create(ctx context.Context, fields Fields) client.Result {
	return b.api.Dispatch(ctx, b.ops.Create, client.Request{Body: fields})
}

// Update отправляет id в теле вместе с полями
func (b *RemoteBackend) Update(ctx context.Context, id string, fields Fields) client.Result {
	body := fields.clone()
	if body == nil {
		body = Fields{}
	}
	body["id"] = id
	return b.api.Dispatch(ctx, b.ops.Update, client.Request{Body: body})
}

func (b *RemoteBackend) Delete(ctx context.Context, id string) client.Result {
	return b.api.Dispatch(ctx, b.ops.Delete, client.Request{
		PathParams: map[string]string{"id": id},
	})
}

// MemoryBackend хранит записи в памяти процесса. Используется для ресурсов без API.
type MemoryBackend struct {
	mu      sync.Mutex
	records []Fields
}

// NewMemoryBackend создает MemoryBackend с начальными записями
func NewMemoryBackend(seed []Fields) *MemoryBackend {
	b := &MemoryBackend{}
	for _, r := range seed {
		b.records = append(b.records, r.clone())
	}
	return b
}

func (b *MemoryBackend) List(_ context.Context, _ client.Query) client.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ok(b.records)
}

func (b *MemoryBackend) Create(_ context.Context, fields Fields) client.Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := fields.clone()
	if record == nil {
		record = Fields{}
	}
	if id, _ := record["id"].(string); id == "" {
		record["id"] = uuid.NewString()
	}
	b.records = append(b.records, record)
	return b.ok(record)
}

func (b *MemoryBackend) Update(_ context.Context, id string, fields Fields) client.Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return notFound(id)
	}
	updated := b.records[i].clone()
	for k, v := range fields {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	b.records[i] = updated
	return b.ok(updated)
}

func (b *MemoryBackend) Delete(_ context.Context, id string) client.Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return notFound(id)
	}
	b.records = append(b.records[:i], b.records[i+1:]...)
	return client.Result{HTTPStatus: http.StatusOK}
}

func (b *MemoryBackend) index(id string) int {
	for i, r := range b.records {
		if recordID(r["id"]) == id {
			return i
		}
	}
	return -1
}

func (b *MemoryBackend) ok(v any) client.Result {
	data, err := json.Marshal(v)
	if err != nil {
		return client.Result{Failure: &client.Failure{
			Kind:    errors.ErrInternal,
			Message: err.Error(),
		}}
	}
	return client.Result{Data: data, HTTPStatus: http.StatusOK}
}

func notFound(id string) client.Result {
	return client.Result{
		HTTPStatus: http.StatusNotFound,
		Failure: &client.Failure{
			Kind:       errors.ErrNotFound,
			Message:    "record " + id + " not found",
			HTTPStatus: http.StatusNotFound,
		},
	}
}
