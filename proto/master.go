package proto

import (
	"context"

	"github.com/kvcachestore/master/uuid"
	"google.golang.org/grpc"
)

// Wire types. No .proto stubs were available in the retrieved pack for this
// service, so these are plain Go structs carried over the JSON codec
// registered in codec.go, rather than protoc-gen-go message types.

type SegmentWire struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Base uint64    `json:"base"`
	Size uint64    `json:"size"`
}

type HandleDescriptorWire struct {
	SegmentName   string `json:"segment_name"`
	RemoteAddress uint64 `json:"remote_address"`
	Size          uint64 `json:"size"`
	Status        int32  `json:"status"`
}

type ReplicaDescriptorWire struct {
	Status  int32                  `json:"status"`
	Handles []HandleDescriptorWire `json:"handles"`
}

type ReplicateConfigWire struct {
	ReplicaNum        uint32   `json:"replica_num"`
	PreferredSegments []string `json:"preferred_segments,omitempty"`
}

type MountSegmentRequest struct {
	Segment  SegmentWire `json:"segment"`
	ClientID uuid.UUID   `json:"client_id"`
}
type MountSegmentResponse struct{}

type ReMountSegmentRequest struct {
	Segments []SegmentWire `json:"segments"`
	ClientID uuid.UUID     `json:"client_id"`
}
type ReMountSegmentResponse struct{}

type UnmountSegmentRequest struct {
	SegmentID uuid.UUID `json:"segment_id"`
	ClientID  uuid.UUID `json:"client_id"`
}
type UnmountSegmentResponse struct{}

type ExistKeyRequest struct {
	Key string `json:"key"`
}
type ExistKeyResponse struct {
	Exists bool `json:"exists"`
}

type GetReplicaListRequest struct {
	Key string `json:"key"`
}
type GetReplicaListResponse struct {
	Replicas []ReplicaDescriptorWire `json:"replicas"`
}

type PutStartRequest struct {
	Key          string              `json:"key"`
	ValueLength  uint64              `json:"value_length"`
	SliceLengths []uint64            `json:"slice_lengths"`
	Config       ReplicateConfigWire `json:"config"`
}
type PutStartResponse struct {
	Replicas []ReplicaDescriptorWire `json:"replicas"`
}

type PutEndRequest struct {
	Key string `json:"key"`
}
type PutEndResponse struct{}

type PutRevokeRequest struct {
	Key string `json:"key"`
}
type PutRevokeResponse struct{}

type RemoveRequest struct {
	Key string `json:"key"`
}
type RemoveResponse struct{}

type RemoveAllRequest struct{}
type RemoveAllResponse struct {
	Count uint64 `json:"count"`
}

type PingRequest struct {
	ClientID uuid.UUID `json:"client_id"`
}
type PingResponse struct {
	ViewVersion uint64 `json:"view_version"`
	Status      int32  `json:"status"`
}

type GetAllKeysRequest struct{}
type GetAllKeysResponse struct {
	Keys []string `json:"keys"`
}

type GetKeyCountRequest struct{}
type GetKeyCountResponse struct {
	Count int `json:"count"`
}

type GetAllSegmentsRequest struct{}
type GetAllSegmentsResponse struct {
	Names []string `json:"names"`
}

type QuerySegmentsRequest struct {
	Name string `json:"name"`
}
type QuerySegmentsResponse struct {
	Used     uint64 `json:"used"`
	Capacity uint64 `json:"capacity"`
}

type GetFsdirRequest struct{}
type GetFsdirResponse struct {
	ClusterID string `json:"cluster_id"`
}

// Batch* requests/responses. Each element result carries its own error
// string (empty on success): a single failed element never aborts sibling
// elements and batches are not atomic.

type ExistKeyResult struct {
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}
type BatchExistKeyRequest struct {
	Keys []string `json:"keys"`
}
type BatchExistKeyResponse struct {
	Results []ExistKeyResult `json:"results"`
}

type ReplicaListResult struct {
	Replicas []ReplicaDescriptorWire `json:"replicas,omitempty"`
	Error    string                  `json:"error,omitempty"`
}
type BatchGetReplicaListRequest struct {
	Keys []string `json:"keys"`
}
type BatchGetReplicaListResponse struct {
	Results []ReplicaListResult `json:"results"`
}

type PutStartElementWire struct {
	Key          string   `json:"key"`
	ValueLength  uint64   `json:"value_length"`
	SliceLengths []uint64 `json:"slice_lengths"`
}
type BatchPutStartRequest struct {
	Elements []PutStartElementWire `json:"elements"`
	Config   ReplicateConfigWire   `json:"config"`
}
type BatchPutStartResponse struct {
	Results []ReplicaListResult `json:"results"`
}

type ErrorResult struct {
	Error string `json:"error,omitempty"`
}
type BatchPutEndRequest struct {
	Keys []string `json:"keys"`
}
type BatchPutEndResponse struct {
	Results []ErrorResult `json:"results"`
}

type BatchPutRevokeRequest struct {
	Keys []string `json:"keys"`
}
type BatchPutRevokeResponse struct {
	Results []ErrorResult `json:"results"`
}

type BatchRemoveRequest struct {
	Keys []string `json:"keys"`
}
type BatchRemoveResponse struct {
	Results []ErrorResult `json:"results"`
}

// MasterServer is the service interface RegisterMasterServer dispatches to,
// hand-authored in the shape protoc-gen-go-grpc would emit from a
// master.proto this pack never retrieved a copy of.
type MasterServer interface {
	MountSegment(context.Context, *MountSegmentRequest) (*MountSegmentResponse, error)
	ReMountSegment(context.Context, *ReMountSegmentRequest) (*ReMountSegmentResponse, error)
	UnmountSegment(context.Context, *UnmountSegmentRequest) (*UnmountSegmentResponse, error)
	ExistKey(context.Context, *ExistKeyRequest) (*ExistKeyResponse, error)
	GetReplicaList(context.Context, *GetReplicaListRequest) (*GetReplicaListResponse, error)
	PutStart(context.Context, *PutStartRequest) (*PutStartResponse, error)
	PutEnd(context.Context, *PutEndRequest) (*PutEndResponse, error)
	PutRevoke(context.Context, *PutRevokeRequest) (*PutRevokeResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	RemoveAll(context.Context, *RemoveAllRequest) (*RemoveAllResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetAllKeys(context.Context, *GetAllKeysRequest) (*GetAllKeysResponse, error)
	GetKeyCount(context.Context, *GetKeyCountRequest) (*GetKeyCountResponse, error)
	GetAllSegments(context.Context, *GetAllSegmentsRequest) (*GetAllSegmentsResponse, error)
	QuerySegments(context.Context, *QuerySegmentsRequest) (*QuerySegmentsResponse, error)
	GetFsdir(context.Context, *GetFsdirRequest) (*GetFsdirResponse, error)
	BatchExistKey(context.Context, *BatchExistKeyRequest) (*BatchExistKeyResponse, error)
	BatchGetReplicaList(context.Context, *BatchGetReplicaListRequest) (*BatchGetReplicaListResponse, error)
	BatchPutStart(context.Context, *BatchPutStartRequest) (*BatchPutStartResponse, error)
	BatchPutEnd(context.Context, *BatchPutEndRequest) (*BatchPutEndResponse, error)
	BatchPutRevoke(context.Context, *BatchPutRevokeRequest) (*BatchPutRevokeResponse, error)
	BatchRemove(context.Context, *BatchRemoveRequest) (*BatchRemoveResponse, error)
}

func RegisterMasterServer(s grpc.ServiceRegistrar, srv MasterServer) {
	s.RegisterService(&masterServiceDesc, srv)
}

func _Master_MountSegment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MountSegmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).MountSegment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/MountSegment"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).MountSegment(ctx, req.(*MountSegmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_ReMountSegment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReMountSegmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).ReMountSegment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/ReMountSegment"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).ReMountSegment(ctx, req.(*ReMountSegmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_UnmountSegment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UnmountSegmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).UnmountSegment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/UnmountSegment"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).UnmountSegment(ctx, req.(*UnmountSegmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_ExistKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ExistKeyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).ExistKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/ExistKey"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).ExistKey(ctx, req.(*ExistKeyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetReplicaList_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetReplicaListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetReplicaList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/GetReplicaList"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetReplicaList(ctx, req.(*GetReplicaListRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_PutStart_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutStartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).PutStart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/PutStart"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).PutStart(ctx, req.(*PutStartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_PutEnd_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutEndRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).PutEnd(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/PutEnd"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).PutEnd(ctx, req.(*PutEndRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_PutRevoke_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutRevokeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).PutRevoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/PutRevoke"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).PutRevoke(ctx, req.(*PutRevokeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_Remove_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).Remove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/Remove"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).Remove(ctx, req.(*RemoveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_RemoveAll_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveAllRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).RemoveAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/RemoveAll"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).RemoveAll(ctx, req.(*RemoveAllRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetAllKeys_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllKeysRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetAllKeys(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/GetAllKeys"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetAllKeys(ctx, req.(*GetAllKeysRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetKeyCount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetKeyCountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetKeyCount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/GetKeyCount"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetKeyCount(ctx, req.(*GetKeyCountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetAllSegments_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllSegmentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetAllSegments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/GetAllSegments"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetAllSegments(ctx, req.(*GetAllSegmentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_QuerySegments_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QuerySegmentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).QuerySegments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/QuerySegments"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).QuerySegments(ctx, req.(*QuerySegmentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetFsdir_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFsdirRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetFsdir(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/GetFsdir"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetFsdir(ctx, req.(*GetFsdirRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchExistKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchExistKeyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchExistKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchExistKey"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchExistKey(ctx, req.(*BatchExistKeyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchGetReplicaList_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchGetReplicaListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchGetReplicaList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchGetReplicaList"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchGetReplicaList(ctx, req.(*BatchGetReplicaListRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchPutStart_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchPutStartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchPutStart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchPutStart"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchPutStart(ctx, req.(*BatchPutStartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchPutEnd_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchPutEndRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchPutEnd(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchPutEnd"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchPutEnd(ctx, req.(*BatchPutEndRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchPutRevoke_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchPutRevokeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchPutRevoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchPutRevoke"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchPutRevoke(ctx, req.(*BatchPutRevokeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_BatchRemove_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BatchRemoveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).BatchRemove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/kvmaster.Master/BatchRemove"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).BatchRemove(ctx, req.(*BatchRemoveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var masterServiceDesc = grpc.ServiceDesc{
	ServiceName: "kvmaster.Master",
	HandlerType: (*MasterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MountSegment", Handler: _Master_MountSegment_Handler},
		{MethodName: "ReMountSegment", Handler: _Master_ReMountSegment_Handler},
		{MethodName: "UnmountSegment", Handler: _Master_UnmountSegment_Handler},
		{MethodName: "ExistKey", Handler: _Master_ExistKey_Handler},
		{MethodName: "GetReplicaList", Handler: _Master_GetReplicaList_Handler},
		{MethodName: "PutStart", Handler: _Master_PutStart_Handler},
		{MethodName: "PutEnd", Handler: _Master_PutEnd_Handler},
		{MethodName: "PutRevoke", Handler: _Master_PutRevoke_Handler},
		{MethodName: "Remove", Handler: _Master_Remove_Handler},
		{MethodName: "RemoveAll", Handler: _Master_RemoveAll_Handler},
		{MethodName: "Ping", Handler: _Master_Ping_Handler},
		{MethodName: "GetAllKeys", Handler: _Master_GetAllKeys_Handler},
		{MethodName: "GetKeyCount", Handler: _Master_GetKeyCount_Handler},
		{MethodName: "GetAllSegments", Handler: _Master_GetAllSegments_Handler},
		{MethodName: "QuerySegments", Handler: _Master_QuerySegments_Handler},
		{MethodName: "GetFsdir", Handler: _Master_GetFsdir_Handler},
		{MethodName: "BatchExistKey", Handler: _Master_BatchExistKey_Handler},
		{MethodName: "BatchGetReplicaList", Handler: _Master_BatchGetReplicaList_Handler},
		{MethodName: "BatchPutStart", Handler: _Master_BatchPutStart_Handler},
		{MethodName: "BatchPutEnd", Handler: _Master_BatchPutEnd_Handler},
		{MethodName: "BatchPutRevoke", Handler: _Master_BatchPutRevoke_Handler},
		{MethodName: "BatchRemove", Handler: _Master_BatchRemove_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "master.proto",
}
