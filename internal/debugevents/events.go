package debugevents

// Metadata is the first record of a file set, written when the instrumented
// run starts.
type Metadata struct {
	WallTime float64 `json:"wall_time"`
}

// Execution is a compact record of one executed operation.
type Execution struct {
	WallTime              float64  `json:"wall_time"`
	OpType                string   `json:"op_type"`
	OutputTensorDeviceIDs []string `json:"output_tensor_device_ids"`
}

// SourceFile carries the full line content of one source file observed
// during the instrumented run, identified by (host, path).
type SourceFile struct {
	HostName string   `json:"host_name"`
	FilePath string   `json:"file_path"`
	Lines    []string `json:"lines"`
}
