package mqtt

// ReasonCode represents an MQTT v5.0 reason code. Values below 0x80
// indicate success, values of 0x80 and above indicate failure.
type ReasonCode byte

// Reason codes as defined in MQTT v5.0 specification.
const (
	ReasonSuccess                    ReasonCode = 0x00
	ReasonGrantedQoS1                ReasonCode = 0x01
	ReasonGrantedQoS2                ReasonCode = 0x02
	ReasonDisconnectWithWill         ReasonCode = 0x04
	ReasonNoMatchingSubscribers      ReasonCode = 0x10
	ReasonNoSubscriptionExisted      ReasonCode = 0x11
	ReasonContinueAuth               ReasonCode = 0x18
	ReasonReAuth                     ReasonCode = 0x19
	ReasonUnspecifiedError           ReasonCode = 0x80
	ReasonMalformedPacket            ReasonCode = 0x81
	ReasonProtocolError              ReasonCode = 0x82
	ReasonImplSpecificError          ReasonCode = 0x83
	ReasonUnsupportedProtocolVersion ReasonCode = 0x84
	ReasonClientIDNotValid           ReasonCode = 0x85
	ReasonBadUserNameOrPassword      ReasonCode = 0x86
	ReasonNotAuthorized              ReasonCode = 0x87
	ReasonServerUnavailable          ReasonCode = 0x88
	ReasonServerBusy                 ReasonCode = 0x89
	ReasonBanned                     ReasonCode = 0x8A
	ReasonServerShuttingDown         ReasonCode = 0x8B
	ReasonBadAuthMethod              ReasonCode = 0x8C
	ReasonKeepAliveTimeout           ReasonCode = 0x8D
	ReasonSessionTakenOver           ReasonCode = 0x8E
	ReasonTopicFilterInvalid         ReasonCode = 0x8F
	ReasonTopicNameInvalid           ReasonCode = 0x90
	ReasonPacketIDInUse              ReasonCode = 0x91
	ReasonPacketIDNotFound           ReasonCode = 0x92
	ReasonReceiveMaxExceeded         ReasonCode = 0x93
	ReasonTopicAliasInvalid          ReasonCode = 0x94
	ReasonPacketTooLarge             ReasonCode = 0x95
	ReasonMessageRateTooHigh         ReasonCode = 0x96
	ReasonQuotaExceeded              ReasonCode = 0x97
	ReasonAdministrativeAction       ReasonCode = 0x98
	ReasonPayloadFormatInvalid       ReasonCode = 0x99
	ReasonRetainNotSupported         ReasonCode = 0x9A
	ReasonQoSNotSupported            ReasonCode = 0x9B
	ReasonUseAnotherServer           ReasonCode = 0x9C
	ReasonServerMoved                ReasonCode = 0x9D
	ReasonSharedSubNotSupported      ReasonCode = 0x9E
	ReasonConnectionRateExceeded     ReasonCode = 0x9F
	ReasonMaximumConnectTime         ReasonCode = 0xA0
	ReasonSubIDNotSupported          ReasonCode = 0xA1
	ReasonWildcardSubNotSupported    ReasonCode = 0xA2
)

// String returns the specification name of the reason code.
func (r ReasonCode) String() string {
	switch r {
	case ReasonSuccess:
		return "Success"
	case ReasonGrantedQoS1:
		return "Granted QoS 1"
	case ReasonGrantedQoS2:
		return "Granted QoS 2"
	case ReasonDisconnectWithWill:
		return "Disconnect with Will Message"
	case ReasonNoMatchingSubscribers:
		return "No matching subscribers"
	case ReasonNoSubscriptionExisted:
		return "No subscription existed"
	case ReasonContinueAuth:
		return "Continue authentication"
	case ReasonReAuth:
		return "Re-authenticate"
	case ReasonUnspecifiedError:
		return "Unspecified error"
	case ReasonMalformedPacket:
		return "Malformed Packet"
	case ReasonProtocolError:
		return "Protocol Error"
	case ReasonImplSpecificError:
		return "Implementation specific error"
	case ReasonUnsupportedProtocolVersion:
		return "Unsupported Protocol Version"
	case ReasonClientIDNotValid:
		return "Client Identifier not valid"
	case ReasonBadUserNameOrPassword:
		return "Bad User Name or Password"
	case ReasonNotAuthorized:
		return "Not authorized"
	case ReasonServerUnavailable:
		return "Server unavailable"
	case ReasonServerBusy:
		return "Server busy"
	case ReasonBanned:
		return "Banned"
	case ReasonServerShuttingDown:
		return "Server shutting down"
	case ReasonBadAuthMethod:
		return "Bad authentication method"
	case ReasonKeepAliveTimeout:
		return "Keep Alive timeout"
	case ReasonSessionTakenOver:
		return "Session taken over"
	case ReasonTopicFilterInvalid:
		return "Topic Filter invalid"
	case ReasonTopicNameInvalid:
		return "Topic Name invalid"
	case ReasonPacketIDInUse:
		return "Packet Identifier in use"
	case ReasonPacketIDNotFound:
		return "Packet Identifier not found"
	case ReasonReceiveMaxExceeded:
		return "Receive Maximum exceeded"
	case ReasonTopicAliasInvalid:
		return "Topic Alias invalid"
	case ReasonPacketTooLarge:
		return "Packet too large"
	case ReasonMessageRateTooHigh:
		return "Message rate too high"
	case ReasonQuotaExceeded:
		return "Quota exceeded"
	case ReasonAdministrativeAction:
		return "Administrative action"
	case ReasonPayloadFormatInvalid:
		return "Payload format invalid"
	case ReasonRetainNotSupported:
		return "Retain not supported"
	case ReasonQoSNotSupported:
		return "QoS not supported"
	case ReasonUseAnotherServer:
		return "Use another server"
	case ReasonServerMoved:
		return "Server moved"
	case ReasonSharedSubNotSupported:
		return "Shared Subscriptions not supported"
	case ReasonConnectionRateExceeded:
		return "Connection rate exceeded"
	case ReasonMaximumConnectTime:
		return "Maximum connect time"
	case ReasonSubIDNotSupported:
		return "Subscription Identifiers not supported"
	case ReasonWildcardSubNotSupported:
		return "Wildcard Subscriptions not supported"
	default:
		return "Unknown"
	}
}

// IsError returns true for failure reason codes.
func (r ReasonCode) IsError() bool {
	return r >= 0x80
}

// ValidForPUBACK returns true if the code may appear in PUBACK or PUBREC.
func (r ReasonCode) ValidForPUBACK() bool {
	switch r {
	case ReasonSuccess, ReasonNoMatchingSubscribers, ReasonUnspecifiedError,
		ReasonImplSpecificError, ReasonNotAuthorized, ReasonTopicNameInvalid,
		ReasonPacketIDInUse, ReasonQuotaExceeded, ReasonPayloadFormatInvalid:
		return true
	}
	return false
}

// ValidForPUBREL returns true if the code may appear in PUBREL or PUBCOMP.
func (r ReasonCode) ValidForPUBREL() bool {
	return r == ReasonSuccess || r == ReasonPacketIDNotFound
}

// ValidForSUBACK returns true if the code may appear as a SUBACK payload
// entry.
func (r ReasonCode) ValidForSUBACK() bool {
	switch r {
	case ReasonSuccess, ReasonGrantedQoS1, ReasonGrantedQoS2,
		ReasonUnspecifiedError, ReasonImplSpecificError, ReasonNotAuthorized,
		ReasonTopicFilterInvalid, ReasonPacketIDInUse, ReasonQuotaExceeded,
		ReasonSharedSubNotSupported, ReasonSubIDNotSupported,
		ReasonWildcardSubNotSupported:
		return true
	}
	return false
}

// ValidForUNSUBACK returns true if the code may appear as an UNSUBACK
// payload entry.
func (r ReasonCode) ValidForUNSUBACK() bool {
	switch r {
	case ReasonSuccess, ReasonNoSubscriptionExisted, ReasonUnspecifiedError,
		ReasonImplSpecificError, ReasonNotAuthorized, ReasonTopicFilterInvalid,
		ReasonPacketIDInUse:
		return true
	}
	return false
}

// ValidForAUTH returns true if the code may appear in an AUTH packet.
func (r ReasonCode) ValidForAUTH() bool {
	return r == ReasonSuccess || r == ReasonContinueAuth || r == ReasonReAuth
}

// ConnectReturnCode is the MQTT 3.1.1 CONNACK return code. v5 replaced
// these with reason codes.
type ConnectReturnCode byte

const (
	ConnectAccepted                 ConnectReturnCode = 0x00
	ConnectRefusedProtocolVersion   ConnectReturnCode = 0x01
	ConnectRefusedIdentifier        ConnectReturnCode = 0x02
	ConnectRefusedServerUnavailable ConnectReturnCode = 0x03
	ConnectRefusedBadCredentials    ConnectReturnCode = 0x04
	ConnectRefusedNotAuthorized     ConnectReturnCode = 0x05
)

// String returns the specification name of the return code.
func (c ConnectReturnCode) String() string {
	switch c {
	case ConnectAccepted:
		return "Connection Accepted"
	case ConnectRefusedProtocolVersion:
		return "Connection Refused, unacceptable protocol version"
	case ConnectRefusedIdentifier:
		return "Connection Refused, identifier rejected"
	case ConnectRefusedServerUnavailable:
		return "Connection Refused, Server unavailable"
	case ConnectRefusedBadCredentials:
		return "Connection Refused, bad user name or password"
	case ConnectRefusedNotAuthorized:
		return "Connection Refused, not authorized"
	default:
		return "Unknown"
	}
}

// ReasonCode maps the v3 return code onto the closest v5 reason code so
// engine callers see one failure vocabulary.
func (c ConnectReturnCode) ReasonCode() ReasonCode {
	switch c {
	case ConnectAccepted:
		return ReasonSuccess
	case ConnectRefusedProtocolVersion:
		return ReasonUnsupportedProtocolVersion
	case ConnectRefusedIdentifier:
		return ReasonClientIDNotValid
	case ConnectRefusedServerUnavailable:
		return ReasonServerUnavailable
	case ConnectRefusedBadCredentials:
		return ReasonBadUserNameOrPassword
	case ConnectRefusedNotAuthorized:
		return ReasonNotAuthorized
	default:
		return ReasonUnspecifiedError
	}
}
