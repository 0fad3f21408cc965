package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// serviceDesc is hand-written in place of a protoc-generated one: every
// method decodes its request with the codec registered in codec.go, calls
// the matching storageControlServer method, and maps a domain error onto a
// codes.Code through errors.go's withError, the counterpart of the REST
// transport's WithError mapping onto an HTTP status.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "storagecontrol.StorageControl",
	HandlerType: (*storageControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProject", Handler: createProjectHandler},
		{MethodName: "CreateBranch", Handler: createBranchHandler},
		{MethodName: "CreateBucket", Handler: createBucketHandler},
		{MethodName: "CreateTable", Handler: createTableHandler},
		{MethodName: "ImportTable", Handler: importTableHandler},
		{MethodName: "CreateSnapshot", Handler: createSnapshotHandler},
		{MethodName: "RestoreSnapshot", Handler: restoreSnapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storagecontrol.proto",
}

// RegisterStorageControlServer mounts srv's methods onto server under the
// serviceDesc above.
func RegisterStorageControlServer(server *grpc.Server, srv storageControlServer) {
	server.RegisterService(&serviceDesc, srv)
}

func createProjectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(mmodel.CreateProjectInput)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).CreateProject(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/CreateProject"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).CreateProject(ctx, req.(*mmodel.CreateProjectInput))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func createBranchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateBranchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).CreateBranch(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/CreateBranch"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).CreateBranch(ctx, req.(*CreateBranchRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func createBucketHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateBucketRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).CreateBucket(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/CreateBucket"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).CreateBucket(ctx, req.(*CreateBucketRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func createTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateTableRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).CreateTable(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/CreateTable"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).CreateTable(ctx, req.(*CreateTableRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func importTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(importexport.ImportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).ImportTable(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/ImportTable"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).ImportTable(ctx, req.(*importexport.ImportRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func createSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).CreateSnapshot(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/CreateSnapshot"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).CreateSnapshot(ctx, req.(*CreateSnapshotRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func restoreSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RestoreSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		out, err := srv.(storageControlServer).RestoreSnapshot(ctx, in)
		return out, withErrorIfSet(err)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/storagecontrol.StorageControl/RestoreSnapshot"}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(storageControlServer).RestoreSnapshot(ctx, req.(*RestoreSnapshotRequest))
		return out, withErrorIfSet(err)
	}

	return interceptor(ctx, in, info, handler)
}

func withErrorIfSet(err error) error {
	if err == nil {
		return nil
	}

	return withError(err)
}
