package http

type connState uint8

const (
	eAwaitFrame connState = iota
	eDispatch
	eRespond
	eClose
)

func (s connState) String() string {
	switch s {
	case eAwaitFrame:
		return "AWAIT_FRAME"
	case eDispatch:
		return "DISPATCH"
	case eRespond:
		return "RESPOND"
	case eClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}
