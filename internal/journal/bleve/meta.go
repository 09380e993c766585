package bleve

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"
)

const (
	bucketRuns = "runs"
	bucketIDs  = "ids"
	bucketLast = "last"
)

var errDecode = errors.New("decode failed")

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func mustBucket(tx *bbolt.Tx, name string) *bbolt.Bucket {
	b := tx.Bucket([]byte(name))
	if b == nil {
		b, _ = tx.CreateBucketIfNotExists([]byte(name))
	}
	return b
}

func decode(data []byte, target any) error {
	if len(data) == 0 {
		return errDecode
	}
	return json.Unmarshal(data, target)
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
