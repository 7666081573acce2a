package swarm

import (
	"bytes"
	"sort"
)

const bucketCount = 64

// bucketIndex is a 64-bucket hash index over swarm ids (§4.4), bucketed
// on the id's low 6 bits and binary-searched within each bucket's sorted
// vector — mirroring the reference's fixed bucket-table-plus-bsearch
// design rather than a general-purpose map, so lookups stay cheap even
// with many thousands of registered swarms.
type bucketIndex struct {
	buckets [bucketCount][]*Record
}

func newBucketIndex() *bucketIndex {
	return &bucketIndex{}
}

func bucketOf(id ID) int {
	return int(id[len(id)-1] & (bucketCount - 1))
}

// Insert adds rec to the index, keeping its bucket sorted by id. It is a
// no-op (and returns the existing record) if id is already present.
func (x *bucketIndex) Insert(rec *Record) *Record {
	b := bucketOf(rec.ID)
	bucket := x.buckets[b]
	i := sort.Search(len(bucket), func(i int) bool {
		return bytes.Compare(bucket[i].ID[:], rec.ID[:]) >= 0
	})
	if i < len(bucket) && bucket[i].ID == rec.ID {
		return bucket[i]
	}
	bucket = append(bucket, nil)
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = rec
	x.buckets[b] = bucket
	return rec
}

// Find returns the record for id, or nil.
func (x *bucketIndex) Find(id ID) *Record {
	bucket := x.buckets[bucketOf(id)]
	i := sort.Search(len(bucket), func(i int) bool {
		return bytes.Compare(bucket[i].ID[:], id[:]) >= 0
	})
	if i < len(bucket) && bucket[i].ID == id {
		return bucket[i]
	}
	return nil
}

// Remove deletes id from the index, if present.
func (x *bucketIndex) Remove(id ID) {
	b := bucketOf(id)
	bucket := x.buckets[b]
	i := sort.Search(len(bucket), func(i int) bool {
		return bytes.Compare(bucket[i].ID[:], id[:]) >= 0
	})
	if i < len(bucket) && bucket[i].ID == id {
		x.buckets[b] = append(bucket[:i], bucket[i+1:]...)
	}
}

// All returns every registered record, in no particular order.
func (x *bucketIndex) All() []*Record {
	var out []*Record
	for _, bucket := range x.buckets {
		out = append(out, bucket...)
	}
	return out
}
