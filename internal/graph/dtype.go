package graph

// DataType is intentionally opaque outside its byte-size contract: the
// allocator and shape planner only ever need to know how many bytes one
// element occupies, never which concrete numeric kind it is.
type DataType interface {
	ElemSize() int
	String() string
}

type scalarType struct {
	name string
	size int
}

func (s scalarType) ElemSize() int  { return s.size }
func (s scalarType) String() string { return s.name }

// Preset scalar types. The core never switches on which of these it holds;
// they exist so callers and tests have something concrete to pass without a
// full runtime dtype system.
var (
	Float32 DataType = scalarType{"float32", 4}
	Float64 DataType = scalarType{"float64", 8}
	Int32   DataType = scalarType{"int32", 4}
	Int64   DataType = scalarType{"int64", 8}
	Uint8   DataType = scalarType{"uint8", 1}
	Bool    DataType = scalarType{"bool", 1}
)
