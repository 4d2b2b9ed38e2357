// Package taskctx provides execution contexts for the task attempts of a DAG
// job running on a worker process.
//
// A context gives the processor, inputs and outputs of an attempt its
// identity, a share of the worker memory budget, a channel to report failures
// to the coordinator, access to a shared object registry and to framework
// executor pools. The process wide collaborators are owned by the Service
// façade exposed by the root package:
//
//	srv, _ := taskctx.New(taskctx.WithConfig(cfg))
//	defer srv.Shutdown(ctx)
//	distributor, _ := srv.NewDistributor(2)
//	t := srv.NewTask(attemptID)
//	pc, _ := srv.NewProcessorContext(&taskctx.Attempt{ID: attemptID, DAGName: "wordcount",
//		VertexName: "tokenizer", Task: t, Distributor: distributor}, entity)
//	_ = pc.RequestInitialMemory(64<<20, callback)
//	_ = distributor.MakeInitialAllocations(ctx)
//
// See runtime/attempt for the context itself.
package taskctx
