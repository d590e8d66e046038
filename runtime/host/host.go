package host

import (
	internalgraph "github.com/weft-ml/weft/internal/graph"
)

// Runtime is the in-process backing allocator: a single graph's tensors
// are realized as one plain Go byte slice.
type Runtime = internalgraph.Runtime

// New returns a Runtime backed by ordinary Go heap memory.
//
// Example:
//
//	import (
//	    "github.com/weft-ml/weft/graph"
//	    "github.com/weft-ml/weft/runtime/host"
//	)
//
//	func main() {
//	    g := graph.New(host.New())
//	}
func New() Runtime {
	return internalgraph.NewHostRuntime()
}
