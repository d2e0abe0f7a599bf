package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"kidoku/pkg/logger"
	"kidoku/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// recordKey builds the storage key for a channel's record blob.
func recordKey(channelID string) []byte {
	return []byte("channel:" + channelID + ":record")
}

const recordKeySuffix = ":record"

var recordKeyPrefix = []byte("channel:")

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package. cacheSize <= 0 uses
// pebble's default block cache.
func Open(path string, cacheSize int64) error {
	opts := &pebble.Options{}
	if cacheSize > 0 {
		c := pebble.NewCache(cacheSize)
		defer c.Unref()
		opts.Cache = c
	}
	var err error
	db, err = pebble.Open(path, opts)
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

// GetChannelRecord loads the record blob for a channel. A channel with no
// prior record is not an error: callers get an empty record and proceed.
// Any other store fault propagates.
func GetChannelRecord(channelID string) (models.ChannelRecord, error) {
	if db == nil {
		return models.ChannelRecord{}, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get(recordKey(channelID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			recordLoads.Inc()
			return models.NewChannelRecord(channelID), nil
		}
		recordErrors.Inc()
		logger.Error("get_record_failed", "channel", channelID, "error", err)
		return models.ChannelRecord{}, err
	}
	if closer != nil {
		defer closer.Close()
	}
	var rec models.ChannelRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		recordErrors.Inc()
		logger.Error("get_record_invalid_json", "channel", channelID, "error", err)
		return models.ChannelRecord{}, fmt.Errorf("invalid channel record: %w", err)
	}
	if rec.Entries == nil {
		rec.Entries = map[string]models.Entry{}
	}
	recordLoads.Inc()
	return rec, nil
}

// SaveChannelRecord persists the record blob for a channel. The write is
// synced; the get/mutate/save sequence around it is not transactional and
// concurrent saves to the same channel are last-write-wins.
func SaveChannelRecord(channelID string, rec models.ChannelRecord) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal channel record: %w", err)
	}
	if err := db.Set(recordKey(channelID), b, pebble.Sync); err != nil {
		recordErrors.Inc()
		logger.Error("save_record_failed", "channel", channelID, "error", err)
		return err
	}
	recordSaves.Inc()
	logger.Debug("save_record_ok", "channel", channelID, "entries", len(rec.Entries))
	return nil
}

// ListChannelIDs returns the ids of all channels with a stored record, in
// key order. Used by the retention sweeper.
func ListChannelIDs() ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(recordKeyPrefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), recordKeyPrefix) {
			break
		}
		k := string(iter.Key())
		if len(k) > len("channel:")+len(recordKeySuffix) && k[len(k)-len(recordKeySuffix):] == recordKeySuffix {
			out = append(out, k[len("channel:"):len(k)-len(recordKeySuffix)])
		}
	}
	return out, iter.Error()
}
