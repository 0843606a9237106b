package object

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestHandleStoresOnce(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	b := NewBlobFromPayload(&BlobPayload{Leaf: Bytes("hello")})

	first, err := b.ID(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.ID(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("ids differ: %s vs %s", first, second)
	}
	if got := s.storeCount(); got != 1 {
		t.Errorf("store called %d times, want 1", got)
	}
}

func TestHandleLoadsOnce(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()

	id, err := s.Store(ctx, &BlobPayload{Leaf: Bytes("hello")})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBlobFromID(id)
	for i := 0; i < 3; i++ {
		if _, err := b.Payload(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.loadCount(); got != 1 {
		t.Errorf("load called %d times, want 1", got)
	}
}

func TestHandleConcurrentIDCoalesces(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	b := NewBlobFromPayload(&BlobPayload{Leaf: Bytes("hello")})

	var wg sync.WaitGroup
	ids := make([]ID, 8)
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := b.ID(ctx, s)
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = id
		}()
	}
	wg.Wait()

	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[0] {
			t.Fatalf("id %d differs: %s vs %s", i, ids[i], ids[0])
		}
	}
	if got := s.storeCount(); got != 1 {
		t.Errorf("store called %d times, want 1", got)
	}
}

type failingStorage struct {
	calls int
}

var errStorageDown = errors.New("storage down")

func (f *failingStorage) Store(ctx context.Context, p Payload) (ID, error) {
	f.calls++
	return "", errStorageDown
}

func (f *failingStorage) Load(ctx context.Context, id ID) (Payload, error) {
	f.calls++
	return nil, errStorageDown
}

func TestHandleStoreErrorMemoized(t *testing.T) {
	ctx := context.Background()
	s := &failingStorage{}
	b := NewBlobFromPayload(&BlobPayload{Leaf: Bytes("hello")})

	for i := 0; i < 3; i++ {
		if _, err := b.ID(ctx, s); !errors.Is(err, errStorageDown) {
			t.Fatalf("got %v, want errStorageDown", err)
		}
	}
	if s.calls != 1 {
		t.Errorf("store attempted %d times, want 1 (error memoized)", s.calls)
	}
}

func TestHandleLoadErrorMemoized(t *testing.T) {
	ctx := context.Background()
	s := &failingStorage{}
	b := NewBlobFromID(MakeID(KindBlob, "deadbeef"))

	for i := 0; i < 3; i++ {
		if _, err := b.Payload(ctx, s); !errors.Is(err, errStorageDown) {
			t.Fatalf("got %v, want errStorageDown", err)
		}
	}
	if s.calls != 1 {
		t.Errorf("load attempted %d times, want 1 (error memoized)", s.calls)
	}
}

func TestHandleFromIDNeverStores(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	id, err := s.Store(ctx, &BlobPayload{Leaf: Bytes("hello")})
	if err != nil {
		t.Fatal(err)
	}
	before := s.storeCount()

	b := NewBlobFromID(id)
	got, err := b.ID(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("got %s, want %s", got, id)
	}
	if s.storeCount() != before {
		t.Error("id-constructed handle should not store again")
	}
}
