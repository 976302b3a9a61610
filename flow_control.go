package mqtt

// FlowController enforces the peer's Receive Maximum: the number of
// QoS > 0 publishes that may be unacknowledged at once (MQTT v5.0
// section 4.9). Quota is acquired when a publish is sent and returned
// when its acknowledgement flow reaches a terminal state.
//
// It is owned by one Engine and relies on the engine's single-owner
// contract instead of internal locking.
type FlowController struct {
	receiveMaximum uint16
	inFlight       uint16
}

// NewFlowController creates a flow controller with the given receive
// maximum. Zero means the protocol default of 65535 (no practical
// limit), which is also the v3.1.1 behavior.
func NewFlowController(receiveMaximum uint16) *FlowController {
	if receiveMaximum == 0 {
		receiveMaximum = maxUint16
	}
	return &FlowController{receiveMaximum: receiveMaximum}
}

// Acquire takes one quota slot, or returns ErrQuotaExceeded when the
// peer's receive maximum is reached.
func (f *FlowController) Acquire() error {
	if f.inFlight >= f.receiveMaximum {
		return ErrQuotaExceeded
	}
	f.inFlight++
	return nil
}

// Release returns one quota slot.
func (f *FlowController) Release() {
	if f.inFlight > 0 {
		f.inFlight--
	}
}

// InFlight returns the number of held quota slots.
func (f *FlowController) InFlight() uint16 {
	return f.inFlight
}

// ReceiveMaximum returns the quota limit.
func (f *FlowController) ReceiveMaximum() uint16 {
	return f.receiveMaximum
}
