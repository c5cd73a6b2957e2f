package master

import (
	"testing"

	apierrors "github.com/kvcachestore/master/errors"
	"github.com/stretchr/testify/require"
)

func TestBatchExistKeyIsPerElementIndependent(t *testing.T) {
	m := newTestMaster(t, nil)
	mountTestSegment(t, m, 1024)
	_, err := m.PutStart("present", 32, []uint64{32}, ReplicateConfig{ReplicaNum: 1})
	require.NoError(t, err)
	require.NoError(t, m.PutEnd("present"))

	results := m.BatchExistKey([]string{"present", "missing"})
	require.Len(t, results, 2)
	require.True(t, results[0].Value)
	require.NoError(t, results[0].Err)
	require.False(t, results[1].Value)
	require.NoError(t, results[1].Err)
}

func TestBatchPutStartOneBadElementDoesNotAffectSiblings(t *testing.T) {
	m := newTestMaster(t, nil)
	mountTestSegment(t, m, 1024)

	elems := []PutStartElement{
		{Key: "good", ValueLength: 32, SliceLengths: []uint64{32}},
		{Key: "bad", ValueLength: 100, SliceLengths: []uint64{1, 1}}, // mismatched total
	}
	results := m.BatchPutStart(elems, ReplicateConfig{ReplicaNum: 1})
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Value, 1)
	require.ErrorIs(t, results[1].Err, apierrors.ErrInvalidParams)
}

func TestBatchPutEndAndBatchRemove(t *testing.T) {
	m := newTestMaster(t, nil)
	mountTestSegment(t, m, 1024)
	_, err := m.PutStart("k1", 32, []uint64{32}, ReplicateConfig{ReplicaNum: 1})
	require.NoError(t, err)

	endResults := m.BatchPutEnd([]string{"k1", "missing"})
	require.NoError(t, endResults[0].Err)
	require.ErrorIs(t, endResults[1].Err, apierrors.ErrObjectNotFound)

	// PutEnd sets k1's lease to now, so it is already expired — force a
	// fresh lease to exercise the ObjectHasLease path.
	_, err = m.ExistKey("k1")
	require.NoError(t, err)

	removeResults := m.BatchRemove([]string{"k1"})
	require.ErrorIs(t, removeResults[0].Err, apierrors.ErrObjectHasLease)
}
