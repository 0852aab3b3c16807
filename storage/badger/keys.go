package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// Key prefixes for different data types
const (
	jobRecordPrefix     = "jobrec"
	pendingRecordPrefix = "pndrec"
	profileRecordPrefix = "prorec"
	scrapeLogPrefix     = "scrlog"
	validationLogPrefix = "vallog"
	engagementViewsPre  = "engvie"
	engagementAppsPre   = "engapp"
	embedCachePrefix    = "embcac"
	runStatusKey        = "runstat"
	runLockKey          = "runlock"
)

// makeJobKey generates a key for a job document in a collection.
func makeJobKey(collection storage.Collection, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", jobRecordPrefix, collection, id))
}

// makeJobCollectionPrefix generates the scan prefix covering one collection.
func makeJobCollectionPrefix(collection storage.Collection) []byte {
	return []byte(fmt.Sprintf("%s:%s:", jobRecordPrefix, collection))
}

// makePendingKey generates a key for a pending posting by id.
func makePendingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", pendingRecordPrefix, id))
}

// makeProfileKey generates a key for a user profile.
func makeProfileKey(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", profileRecordPrefix, userID))
}

// makeRunLogKey generates a composite key for an append-only run log entry.
// Format: prefix:timestamp, BigEndian so lexicographic sort is time order.
// Pre-epoch times (the zero time in particular) clamp to the epoch so a
// zero since builds the lowest key instead of underflowing the uint64.
func makeRunLogKey(prefix string, startedAt time.Time) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	micros := startedAt.UnixMicro()
	if micros < 0 {
		micros = 0
	}
	binary.BigEndian.PutUint64(buf[offset:], uint64(micros))
	return buf
}

// makeEngagementKey generates a composite key for a daily engagement bucket.
// Format: prefix:day:id with the day as BigEndian unix days.
func makeEngagementKey(prefix string, day time.Time, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], unixDay(day))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// unixDay truncates a time to whole days since the epoch.
func unixDay(t time.Time) uint64 {
	return uint64(t.UTC().Unix() / 86400)
}

// makeEmbedCacheKey generates a key for a cached embedding vector.
func makeEmbedCacheKey(contentHash core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embedCachePrefix, contentHash))
}
