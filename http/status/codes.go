package status

type (
	Code   uint16
	Status string
)

// Only the codes the server may attach to its errors are kept here. The numbering follows
// the IANA registry.
const (
	OK                          Code = 200 // RFC 9110, 15.3.1
	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5
)

// Text returns a reason phrase for the code. Unknown codes result in an empty string.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	default:
		return ""
	}
}
