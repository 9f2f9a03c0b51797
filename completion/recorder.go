package completion

// Write is one register write seen by a Recorder.
type Write struct {
	Addr  uint64
	Value uint32
}

// Recorder is a Sink that keeps every write in order.
type Recorder struct {
	Writes []Write
}

// WriteResult records a result write.
func (r *Recorder) WriteResult(value int32) {
	r.Writes = append(r.Writes, Write{Addr: ResultAddr, Value: uint32(value)})
}

// WriteStatus records a status write.
func (r *Recorder) WriteStatus(code uint32) {
	r.Writes = append(r.Writes, Write{Addr: StatusAddr, Value: code})
}

// WriteSentinel records the sentinel write.
func (r *Recorder) WriteSentinel() {
	r.Writes = append(r.Writes, Write{Addr: SentinelAddr, Value: SentinelValue})
}

// Completed reports whether the last write was the sentinel.
func (r *Recorder) Completed() bool {
	n := len(r.Writes)
	return n > 0 && r.Writes[n-1].Addr == SentinelAddr
}
