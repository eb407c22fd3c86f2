package statemachine

import "github.com/kocherga-go/kocherga/volatile"

// resumePathCapacity bounds the path a resume record can carry across a
// reset. It is a fixed array, not a string, because volatile.Storage[T]
// reinterprets T's raw memory layout and therefore requires a fixed size.
const resumePathCapacity = 112

// resumeRecord is the VolatileStorage payload spec §4.7's entry logic
// consults: "if VolatileStorage holds a record that requests immediate
// resumption of update from {node, path}, enter AppUpgradeInProgress
// instead." Restart and FactoryReset are the only writers.
type resumeRecord struct {
	ServerNodeID uint16
	PathLen      uint8
	Path         [resumePathCapacity]byte
}

func newResumeRecord(serverNodeID uint16, path string) (resumeRecord, bool) {
	if len(path) > resumePathCapacity {
		return resumeRecord{}, false
	}
	var r resumeRecord
	r.ServerNodeID = serverNodeID
	r.PathLen = uint8(len(path))
	copy(r.Path[:], path)
	return r, true
}

func (r resumeRecord) path() string {
	return string(r.Path[:r.PathLen])
}

// resumeStorageSize is what the host must size its VolatileStorage region
// to in order to back resumeRecord.
var resumeStorageSize = volatile.StorageSize[resumeRecord]()
