package persistence

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/symgo/codec"
)

// Manifest describes one published snapshot.
type Manifest struct {
	// Version is the commit-log version this snapshot was published as.
	Version uint64 `json:"version"`
	// SnapshotKey names the snapshot object in the blob store.
	SnapshotKey string `json:"snapshot_key"`
	// CreatedAt is the publish time in UTC.
	CreatedAt time.Time `json:"created_at"`
	// Symbols is the number of interned strings at publish time.
	Symbols int `json:"symbols"`
	// NumShards is the shard count of the table that wrote the snapshot.
	NumShards int `json:"num_shards"`
	// Hasher names the hash function the table was built with.
	Hasher string `json:"hasher"`
	// SizeBytes is the encoded snapshot size.
	SizeBytes int64 `json:"size_bytes"`
}

// encodeManifest frames the encoded manifest as [nameLen][codec name][payload]
// so readers can decode it without out-of-band codec configuration.
func encodeManifest(c codec.Codec, m *Manifest) ([]byte, error) {
	name := c.Name()
	if len(name) > math.MaxUint8 {
		return nil, fmt.Errorf("codec name too long: %q", name)
	}

	payload, err := c.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	buf := make([]byte, 0, 1+len(name)+len(payload))
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, payload...)
	return buf, nil
}

func decodeManifest(data []byte) (*Manifest, error) {
	if len(data) < 1 {
		return nil, errors.New("manifest frame too short")
	}
	nameLen := int(data[0])
	if len(data) < 1+nameLen {
		return nil, errors.New("manifest frame too short")
	}

	name := string(data[1 : 1+nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown manifest codec: %q", name)
	}

	var m Manifest
	if err := c.Unmarshal(data[1+nameLen:], &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
