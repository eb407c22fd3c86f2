package protocol

// Service ids, analogous to the regulated service ids of a UAVCAN node
// (spec §4.6 names these three plus the heartbeat message). They are
// ordinary DataSpec values once OR'd with node.DataSpecRequestMask or
// node.DataSpecResponseMask by the transport.
const (
	ServiceGetInfo        uint16 = 1
	ServiceExecuteCommand uint16 = 2
	ServiceFileRead       uint16 = 3
)

// SubjectHeartbeat is the subject id the reactor publishes its 1 Hz node
// heartbeat on (spec §4.6), chosen to match the regulated
// uavcan.node.Heartbeat subject id used by real UAVCAN networks.
const SubjectHeartbeat uint16 = 7509

// MaxStringLength bounds the single length-prefix byte used for variable
// length fields (paths, names): the wire format cannot represent a longer
// string without widening the prefix.
const MaxStringLength = 255

// ExecuteCommand command ids, per spec §4.6.
const (
	CommandBeginSoftwareUpdate uint16 = 1
	CommandEmergencyStop       uint16 = 2
	CommandFactoryReset        uint16 = 3
	CommandRestart             uint16 = 4
)

// ExecuteCommand status codes returned in the response.
const (
	CommandStatusSuccess      uint8 = 0
	CommandStatusFailure      uint8 = 1
	CommandStatusBadCommand   uint8 = 2
	CommandStatusBadParameter uint8 = 3
	CommandStatusBadState     uint8 = 4
)

// File.Read error codes. Zero means the read succeeded (Data may still be
// shorter than requested, which per spec §4.6 signals end of file, not an
// error).
const (
	FileErrorOK       uint16 = 0
	FileErrorNotFound uint16 = 1
	FileErrorIO       uint16 = 2
)
