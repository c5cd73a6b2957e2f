package master

import (
	apierrors "github.com/kvcachestore/master/errors"
)

// BatchResult pairs one batch element's outcome with any error, in a
// parallel-arrays shape: a single failed element never aborts the rest of
// the batch.
type BatchResult[T any] struct {
	Value T
	Err   error
}

// BatchExistKey runs ExistKey over every key independently.
func (m *Master) BatchExistKey(keys []string) []BatchResult[bool] {
	out := make([]BatchResult[bool], len(keys))
	for i, key := range keys {
		v, err := m.ExistKey(key)
		out[i] = BatchResult[bool]{Value: v, Err: err}
	}
	return out
}

// BatchGetReplicaList runs GetReplicaList over every key independently.
func (m *Master) BatchGetReplicaList(keys []string) []BatchResult[[]ReplicaDescriptor] {
	out := make([]BatchResult[[]ReplicaDescriptor], len(keys))
	for i, key := range keys {
		v, err := m.GetReplicaList(key)
		out[i] = BatchResult[[]ReplicaDescriptor]{Value: v, Err: err}
	}
	return out
}

// PutStartElement is one element of a BatchPutStart request.
type PutStartElement struct {
	Key          string
	ValueLength  uint64
	SliceLengths []uint64
}

// BatchPutStart validates each element's array-length consistency before
// touching any shard, returning INVALID_PARAMS for the mismatched slot
// without affecting sibling elements, then runs PutStart per element.
func (m *Master) BatchPutStart(elems []PutStartElement, cfg ReplicateConfig) []BatchResult[[]ReplicaDescriptor] {
	out := make([]BatchResult[[]ReplicaDescriptor], len(elems))
	for i, e := range elems {
		var total uint64
		for _, sl := range e.SliceLengths {
			total += sl
		}
		if total != e.ValueLength {
			out[i] = BatchResult[[]ReplicaDescriptor]{Err: apierrors.ErrInvalidParams}
			continue
		}
		v, err := m.PutStart(e.Key, e.ValueLength, e.SliceLengths, cfg)
		out[i] = BatchResult[[]ReplicaDescriptor]{Value: v, Err: err}
	}
	return out
}

// BatchPutEnd runs PutEnd over every key independently.
func (m *Master) BatchPutEnd(keys []string) []BatchResult[struct{}] {
	out := make([]BatchResult[struct{}], len(keys))
	for i, key := range keys {
		out[i] = BatchResult[struct{}]{Err: m.PutEnd(key)}
	}
	return out
}

// BatchPutRevoke runs PutRevoke over every key independently.
func (m *Master) BatchPutRevoke(keys []string) []BatchResult[struct{}] {
	out := make([]BatchResult[struct{}], len(keys))
	for i, key := range keys {
		out[i] = BatchResult[struct{}]{Err: m.PutRevoke(key)}
	}
	return out
}

// BatchRemove runs Remove over every key independently.
func (m *Master) BatchRemove(keys []string) []BatchResult[struct{}] {
	out := make([]BatchResult[struct{}], len(keys))
	for i, key := range keys {
		out[i] = BatchResult[struct{}]{Err: m.Remove(key)}
	}
	return out
}
