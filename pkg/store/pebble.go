package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"pairlink/pkg/logger"
	"pairlink/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq reduces key collisions when multiple messages share the same
// nanosecond timestamp.
var seq uint64

// convLocks serializes append and bulk-update operations per conversation
// so concurrent senders cannot interleave a meta upsert with a message
// write. Striped by key hash.
var convLocks [64]sync.Mutex

func lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &convLocks[h.Sum32()%uint32(len(convLocks))]
}

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func msgPrefix(key string) []byte {
	return []byte("conv:" + key + ":msg:")
}

func metaKey(key string) []byte {
	return []byte("conv:" + key + ":meta")
}

// AppendMessage appends a message to a conversation and upserts the
// conversation metadata in the same atomic batch. The conversation row is
// created lazily on first write; CreatedAt is set only on insert while
// LastMessageAt always moves forward.
func AppendMessage(key string, msg models.Message) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	mu := lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	ts := now.UnixNano()
	s := atomic.AddUint64(&seq, 1)
	rowKey := fmt.Sprintf("conv:%s:msg:%020d-%06d", key, ts, s)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	conv, found, err := GetConversation(key)
	if err != nil {
		return err
	}
	if !found {
		conv = models.Conversation{
			ConversationKey: key,
			CreatedAt:       now.Format(time.RFC3339),
		}
	}
	conv.LastMessageAt = now.Format(time.RFC3339)
	meta, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation meta: %w", err)
	}

	batch := db.NewBatch()
	defer batch.Close()
	if err := batch.Set([]byte(rowKey), data, nil); err != nil {
		return err
	}
	if err := batch.Set(metaKey(key), meta, nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("append_message_failed", "conversation", key, "key", rowKey, "error", err)
		return err
	}
	logger.Info("message_saved", "conversation", key, "key", rowKey, "msg_id", msg.ID)
	return nil
}

// ListMessages returns all messages for a conversation in append order.
func ListMessages(key string) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := msgPrefix(key)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		v := append([]byte(nil), iter.Value()...)
		var m models.Message
		if err := json.Unmarshal(v, &m); err != nil {
			logger.Warn("list_messages_bad_row", "conversation", key, "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// GetConversation returns the conversation metadata row, if present.
func GetConversation(key string) (models.Conversation, bool, error) {
	if db == nil {
		return models.Conversation{}, false, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get(metaKey(key))
	if err == pebble.ErrNotFound {
		return models.Conversation{}, false, nil
	}
	if err != nil {
		return models.Conversation{}, false, err
	}
	defer closer.Close()
	var conv models.Conversation
	if err := json.Unmarshal(v, &conv); err != nil {
		return models.Conversation{}, false, fmt.Errorf("invalid conversation meta: %w", err)
	}
	return conv, true, nil
}

// MarkSeen flips seen=true on every message in the conversation whose
// sender is not reader and whose seen flag is currently false. The flips
// and the meta update commit as one batch. Returns the ids of toggled
// messages; an empty result means nothing qualified and nothing was
// written, so repeated calls are no-ops.
func MarkSeen(key, reader string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	mu := lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	prefix := msgPrefix(key)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}

	type update struct {
		rowKey []byte
		data   []byte
		id     string
	}
	var updates []update
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		if m.Sender == reader || m.Seen {
			continue
		}
		m.Seen = true
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		updates = append(updates, update{
			rowKey: append([]byte(nil), iter.Key()...),
			data:   data,
			id:     m.ID,
		})
	}
	iterErr := iter.Error()
	_ = iter.Close()
	if iterErr != nil {
		return nil, iterErr
	}
	if len(updates) == 0 {
		return nil, nil
	}

	conv, found, err := GetConversation(key)
	if err != nil {
		return nil, err
	}
	if found {
		conv.LastMessageAt = time.Now().UTC().Format(time.RFC3339)
	}

	batch := db.NewBatch()
	defer batch.Close()
	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		if err := batch.Set(u.rowKey, u.data, nil); err != nil {
			return nil, err
		}
		ids = append(ids, u.id)
	}
	if found {
		meta, err := json.Marshal(conv)
		if err != nil {
			return nil, err
		}
		if err := batch.Set(metaKey(key), meta, nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("mark_seen_failed", "conversation", key, "reader", reader, "error", err)
		return nil, err
	}
	logger.Info("messages_marked_seen", "conversation", key, "reader", reader, "count", len(ids))
	return ids, nil
}
