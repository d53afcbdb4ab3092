package rawlog

import "sync/atomic"

// Metrics counts logger activity. One Metrics may be shared by several
// loggers.
type Metrics struct {
	Create    atomic.Uint64 // loggers created
	CreateEx  atomic.Uint64 // logger creations that failed
	Destroy   atomic.Uint64 // loggers closed
	Open      atomic.Uint64 // files opened
	OpenEx    atomic.Uint64 // file opens that failed
	Write     atomic.Uint64 // successful writes
	WriteByte atomic.Uint64 // bytes accepted
	WriteEx   atomic.Uint64 // writes that failed at the file
	Skip      atomic.Uint64 // writes dropped because the buffer was full
	SkipByte  atomic.Uint64 // bytes dropped because the buffer was full
	Flush     atomic.Uint64 // flushes that moved data
	FlushEx   atomic.Uint64 // flushes that failed
}

// Snapshot is a plain copy of Metrics
type Snapshot struct {
	Create, CreateEx, Destroy, Open, OpenEx uint64
	Write, WriteByte, WriteEx              uint64
	Skip, SkipByte, Flush, FlushEx         uint64
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Create:    m.Create.Load(),
		CreateEx:  m.CreateEx.Load(),
		Destroy:   m.Destroy.Load(),
		Open:      m.Open.Load(),
		OpenEx:    m.OpenEx.Load(),
		Write:     m.Write.Load(),
		WriteByte: m.WriteByte.Load(),
		WriteEx:   m.WriteEx.Load(),
		Skip:      m.Skip.Load(),
		SkipByte:  m.SkipByte.Load(),
		Flush:     m.Flush.Load(),
		FlushEx:   m.FlushEx.Load(),
	}
}
