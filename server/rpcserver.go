package server

import (
	"context"
	"net"
	"runtime"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/cubefs/cubefs/blobstore/util/log"
	apierrors "github.com/kvcachestore/master/errors"
	"github.com/kvcachestore/master/master"
	"github.com/kvcachestore/master/proto"
	"github.com/kvcachestore/master/util/limiter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RPCServer adapts proto.MasterServer's wire shapes onto the *master.Master
// core, converting apierrors.Code into grpc status codes at the boundary so
// clients see standard grpc-status semantics on top of the domain taxonomy.
type RPCServer struct {
	*Server
	grpcServer *grpc.Server
	requests   *limiter.RequestLimiter
}

func NewRPCServer(server *Server) *RPCServer {
	rs := &RPCServer{
		Server:   server,
		requests: limiter.NewRequestLimiter(server.cfg.MaxThreads, runtime.NumCPU()),
	}
	rs.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
		rs.unaryInterceptorWithLimiter,
		rs.unaryInterceptorWithTracer,
	))
	proto.RegisterMasterServer(rs.grpcServer, rs)
	return rs
}

// Serve binds addr and runs the grpc server until Stop is called, blocking
// the calling goroutine — callers run it with `go`.
func (r *RPCServer) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("grpc server is running at:", addr)
	return r.grpcServer.Serve(lis)
}

func (r *RPCServer) Stop() { r.grpcServer.GracefulStop() }

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := apierrors.CodeOf(err)
	var c codes.Code
	switch code {
	case apierrors.InvalidParams:
		c = codes.InvalidArgument
	case apierrors.ObjectNotFound, apierrors.SegmentNotFound:
		c = codes.NotFound
	case apierrors.ObjectAlreadyExists, apierrors.SegmentAlreadyExists:
		c = codes.AlreadyExists
	case apierrors.ReplicaIsNotReady:
		c = codes.Unavailable
	case apierrors.InvalidWrite:
		c = codes.FailedPrecondition
	case apierrors.ObjectHasLease:
		c = codes.FailedPrecondition
	case apierrors.NoAvailableHandle:
		c = codes.ResourceExhausted
	case apierrors.UnavailableInCurrentMode:
		c = codes.Unimplemented
	default:
		c = codes.Internal
	}
	return status.Error(c, err.Error())
}

func toReplicaDescriptors(in []master.ReplicaDescriptor) []proto.ReplicaDescriptorWire {
	out := make([]proto.ReplicaDescriptorWire, 0, len(in))
	for _, r := range in {
		handles := make([]proto.HandleDescriptorWire, 0, len(r.Handles))
		for _, h := range r.Handles {
			handles = append(handles, proto.HandleDescriptorWire{
				SegmentName:   h.SegmentName,
				RemoteAddress: h.RemoteAddress,
				Size:          h.Size,
				Status:        int32(h.Status),
			})
		}
		out = append(out, proto.ReplicaDescriptorWire{Status: int32(r.Status), Handles: handles})
	}
	return out
}

func (r *RPCServer) MountSegment(ctx context.Context, req *proto.MountSegmentRequest) (*proto.MountSegmentResponse, error) {
	seg := master.Segment{ID: req.Segment.ID, Name: req.Segment.Name, Base: req.Segment.Base, Size: req.Segment.Size}
	err := r.master.MountSegment(seg, req.ClientID)
	return &proto.MountSegmentResponse{}, toStatus(err)
}

func (r *RPCServer) ReMountSegment(ctx context.Context, req *proto.ReMountSegmentRequest) (*proto.ReMountSegmentResponse, error) {
	segs := make([]master.Segment, 0, len(req.Segments))
	for _, s := range req.Segments {
		segs = append(segs, master.Segment{ID: s.ID, Name: s.Name, Base: s.Base, Size: s.Size})
	}
	err := r.master.ReMountSegment(segs, req.ClientID)
	return &proto.ReMountSegmentResponse{}, toStatus(err)
}

func (r *RPCServer) UnmountSegment(ctx context.Context, req *proto.UnmountSegmentRequest) (*proto.UnmountSegmentResponse, error) {
	err := r.master.UnmountSegment(req.SegmentID, req.ClientID)
	return &proto.UnmountSegmentResponse{}, toStatus(err)
}

func (r *RPCServer) ExistKey(ctx context.Context, req *proto.ExistKeyRequest) (*proto.ExistKeyResponse, error) {
	span := trace.SpanFromContext(ctx)
	exists, err := r.master.ExistKey(req.Key)
	if err != nil && apierrors.CodeOf(err) == apierrors.InternalError {
		span.Errorf("exist key %q failed: %s", req.Key, err)
	}
	return &proto.ExistKeyResponse{Exists: exists}, toStatus(err)
}

func (r *RPCServer) GetReplicaList(ctx context.Context, req *proto.GetReplicaListRequest) (*proto.GetReplicaListResponse, error) {
	replicas, err := r.master.GetReplicaList(req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &proto.GetReplicaListResponse{Replicas: toReplicaDescriptors(replicas)}, nil
}

func (r *RPCServer) PutStart(ctx context.Context, req *proto.PutStartRequest) (*proto.PutStartResponse, error) {
	cfg := master.ReplicateConfig{ReplicaNum: req.Config.ReplicaNum, PreferredSegments: req.Config.PreferredSegments}
	replicas, err := r.master.PutStart(req.Key, req.ValueLength, req.SliceLengths, cfg)
	if err != nil {
		return nil, toStatus(err)
	}
	return &proto.PutStartResponse{Replicas: toReplicaDescriptors(replicas)}, nil
}

func (r *RPCServer) PutEnd(ctx context.Context, req *proto.PutEndRequest) (*proto.PutEndResponse, error) {
	err := r.master.PutEnd(req.Key)
	return &proto.PutEndResponse{}, toStatus(err)
}

func (r *RPCServer) PutRevoke(ctx context.Context, req *proto.PutRevokeRequest) (*proto.PutRevokeResponse, error) {
	err := r.master.PutRevoke(req.Key)
	return &proto.PutRevokeResponse{}, toStatus(err)
}

func (r *RPCServer) Remove(ctx context.Context, req *proto.RemoveRequest) (*proto.RemoveResponse, error) {
	err := r.master.Remove(req.Key)
	return &proto.RemoveResponse{}, toStatus(err)
}

func (r *RPCServer) RemoveAll(ctx context.Context, req *proto.RemoveAllRequest) (*proto.RemoveAllResponse, error) {
	return &proto.RemoveAllResponse{Count: r.master.RemoveAll()}, nil
}

func (r *RPCServer) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	status, viewVersion, err := r.master.Ping(req.ClientID)
	return &proto.PingResponse{ViewVersion: viewVersion, Status: int32(status)}, toStatus(err)
}

func (r *RPCServer) GetAllKeys(ctx context.Context, req *proto.GetAllKeysRequest) (*proto.GetAllKeysResponse, error) {
	return &proto.GetAllKeysResponse{Keys: r.master.GetAllKeys()}, nil
}

func (r *RPCServer) GetKeyCount(ctx context.Context, req *proto.GetKeyCountRequest) (*proto.GetKeyCountResponse, error) {
	return &proto.GetKeyCountResponse{Count: r.master.GetKeyCount()}, nil
}

func (r *RPCServer) GetAllSegments(ctx context.Context, req *proto.GetAllSegmentsRequest) (*proto.GetAllSegmentsResponse, error) {
	return &proto.GetAllSegmentsResponse{Names: r.master.GetAllSegments()}, nil
}

func (r *RPCServer) QuerySegments(ctx context.Context, req *proto.QuerySegmentsRequest) (*proto.QuerySegmentsResponse, error) {
	used, capacity, err := r.master.QuerySegments(req.Name)
	return &proto.QuerySegmentsResponse{Used: used, Capacity: capacity}, toStatus(err)
}

func (r *RPCServer) GetFsdir(ctx context.Context, req *proto.GetFsdirRequest) (*proto.GetFsdirResponse, error) {
	clusterID, err := r.master.GetFsdir()
	return &proto.GetFsdirResponse{ClusterID: clusterID}, toStatus(err)
}

func (r *RPCServer) BatchExistKey(ctx context.Context, req *proto.BatchExistKeyRequest) (*proto.BatchExistKeyResponse, error) {
	results := r.master.BatchExistKey(req.Keys)
	out := make([]proto.ExistKeyResult, len(results))
	for i, res := range results {
		out[i] = proto.ExistKeyResult{Exists: res.Value}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return &proto.BatchExistKeyResponse{Results: out}, nil
}

func (r *RPCServer) BatchGetReplicaList(ctx context.Context, req *proto.BatchGetReplicaListRequest) (*proto.BatchGetReplicaListResponse, error) {
	results := r.master.BatchGetReplicaList(req.Keys)
	out := make([]proto.ReplicaListResult, len(results))
	for i, res := range results {
		out[i] = proto.ReplicaListResult{Replicas: toReplicaDescriptors(res.Value)}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return &proto.BatchGetReplicaListResponse{Results: out}, nil
}

func (r *RPCServer) BatchPutStart(ctx context.Context, req *proto.BatchPutStartRequest) (*proto.BatchPutStartResponse, error) {
	elems := make([]master.PutStartElement, 0, len(req.Elements))
	for _, e := range req.Elements {
		elems = append(elems, master.PutStartElement{Key: e.Key, ValueLength: e.ValueLength, SliceLengths: e.SliceLengths})
	}
	cfg := master.ReplicateConfig{ReplicaNum: req.Config.ReplicaNum, PreferredSegments: req.Config.PreferredSegments}
	results := r.master.BatchPutStart(elems, cfg)
	out := make([]proto.ReplicaListResult, len(results))
	for i, res := range results {
		out[i] = proto.ReplicaListResult{Replicas: toReplicaDescriptors(res.Value)}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return &proto.BatchPutStartResponse{Results: out}, nil
}

func toErrorResults(errs []master.BatchResult[struct{}]) []proto.ErrorResult {
	out := make([]proto.ErrorResult, len(errs))
	for i, res := range errs {
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return out
}

func (r *RPCServer) BatchPutEnd(ctx context.Context, req *proto.BatchPutEndRequest) (*proto.BatchPutEndResponse, error) {
	return &proto.BatchPutEndResponse{Results: toErrorResults(r.master.BatchPutEnd(req.Keys))}, nil
}

func (r *RPCServer) BatchPutRevoke(ctx context.Context, req *proto.BatchPutRevokeRequest) (*proto.BatchPutRevokeResponse, error) {
	return &proto.BatchPutRevokeResponse{Results: toErrorResults(r.master.BatchPutRevoke(req.Keys))}, nil
}

func (r *RPCServer) BatchRemove(ctx context.Context, req *proto.BatchRemoveRequest) (*proto.BatchRemoveResponse, error) {
	return &proto.BatchRemoveResponse{Results: toErrorResults(r.master.BatchRemove(req.Keys))}, nil
}

// unaryInterceptorWithLimiter caps handler concurrency at
// min(max_threads, hw_threads), failing fast rather than queueing since the
// master has no request-priority notion to queue against.
func (r *RPCServer) unaryInterceptorWithLimiter(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if err := r.requests.Acquire(); err != nil {
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}
	defer r.requests.Release()
	return handler(ctx, req)
}

func (r *RPCServer) unaryInterceptorWithTracer(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if reqID, ok := md[proto.ReqIdKey]; ok && len(reqID) > 0 {
			_, ctx = trace.StartSpanFromContextWithTraceID(ctx, info.FullMethod, reqID[0])
		} else {
			trace.SpanFromContextSafe(ctx)
		}
	} else {
		trace.SpanFromContextSafe(ctx)
	}
	return handler(ctx, req)
}
