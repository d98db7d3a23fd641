package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.etcd.io/bbolt"

	"docqa/config"
	"docqa/internal/adapter/index"
	"docqa/internal/domain"
	"docqa/internal/port"
)

var (
	bucketMeta    = []byte("meta")
	bucketEntries = []byte("entries")
	keyMeta       = []byte("snapshot")
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no index snapshot")

// Meta describes how a snapshot was built.
type Meta struct {
	Source         string    `json:"source"`
	ChunkSize      int       `json:"chunk_size"`
	ChunkOverlap   int       `json:"chunk_overlap"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	Count          int       `json:"count"`
	CreatedAt      time.Time `json:"created_at"`
}

// BoltStore persists one built index in a bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketEntries} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with idx. Entries are keyed by their
// insertion order so Load restores them in the same order.
func (s *BoltStore) Save(idx *index.FlatIndex, meta Meta) error {
	return s.save(idx, meta, nil)
}

// SaveCurrent saves idx and records the schema version and config hash of
// cfg in the same transaction, so a snapshot never carries a stale hash.
func (s *BoltStore) SaveCurrent(idx *index.FlatIndex, meta Meta, cfg *config.Config) error {
	return s.save(idx, meta, &SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	})
}

func (s *BoltStore) save(idx *index.FlatIndex, meta Meta, info *SchemaInfo) error {
	entries := idx.Entries()
	meta.Source = idx.Source()
	meta.Dimension = idx.Dimension()
	meta.Count = len(entries)
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}

		for _, e := range entries {
			value, err := encodeEntry(e)
			if err != nil {
				return fmt.Errorf("failed to encode chunk %d: %w", e.Chunk.Seq, err)
			}
			if err := b.Put(orderKey(e.Order), value); err != nil {
				return err
			}
		}

		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		mb := tx.Bucket(bucketMeta)
		if err := mb.Put(keyMeta, data); err != nil {
			return err
		}
		if info == nil {
			return nil
		}
		return putSchemaInfo(mb, info)
	})
}

// Load rebuilds the saved index.
func (s *BoltStore) Load() (*index.FlatIndex, Meta, error) {
	var meta Meta
	var items []port.IndexItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyMeta)
		if data == nil {
			return ErrNoSnapshot
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("corrupt snapshot meta: %w", err)
		}

		return tx.Bucket(bucketEntries).ForEach(func(k, v []byte) error {
			item, err := decodeEntry(v)
			if err != nil {
				return fmt.Errorf("corrupt entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, Meta{}, err
	}

	if len(items) != meta.Count {
		return nil, Meta{}, fmt.Errorf("snapshot holds %d entries, meta records %d", len(items), meta.Count)
	}

	idx := index.NewFlatIndex(meta.Source)
	if err := idx.InsertBatch(items); err != nil {
		return nil, Meta{}, err
	}
	return idx, meta, nil
}

// Meta returns the stored snapshot meta without loading entries.
func (s *BoltStore) Meta() (Meta, error) {
	var meta Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyMeta)
		if data == nil {
			return ErrNoSnapshot
		}
		return json.Unmarshal(data, &meta)
	})
	return meta, err
}

func orderKey(order int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(order))
	return key
}

// encodeEntry lays out an entry as a 4-byte chunk JSON length, the chunk
// JSON and the embedding as little-endian float32 values.
func encodeEntry(e domain.IndexEntry) ([]byte, error) {
	chunk, err := json.Marshal(e.Chunk)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 4+len(chunk)+4*len(e.Embedding))
	binary.BigEndian.PutUint32(buf, uint32(len(chunk)))
	copy(buf[4:], chunk)

	off := 4 + len(chunk)
	for i, f := range e.Embedding {
		binary.LittleEndian.PutUint32(buf[off+4*i:], math.Float32bits(f))
	}
	return buf, nil
}

func decodeEntry(v []byte) (port.IndexItem, error) {
	if len(v) < 4 {
		return port.IndexItem{}, errors.New("entry too short")
	}
	n := int(binary.BigEndian.Uint32(v))
	if 4+n > len(v) || (len(v)-4-n)%4 != 0 {
		return port.IndexItem{}, errors.New("entry length mismatch")
	}

	var chunk domain.Chunk
	if err := json.Unmarshal(v[4:4+n], &chunk); err != nil {
		return port.IndexItem{}, err
	}

	raw := v[4+n:]
	embedding := make([]float32, len(raw)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}

	return port.IndexItem{Embedding: embedding, Chunk: chunk}, nil
}
