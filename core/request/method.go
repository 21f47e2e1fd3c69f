package request

// Method is the closed set of HTTP methods the pipeline understands.
type Method uint8

const (
	MethodInvalid Method = iota
	MethodGet
	MethodPost
	MethodHead
	MethodPut
	MethodDelete
	MethodOptions
)

var methodNames = [...]string{
	MethodInvalid: "INVALID",
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodHead:    "HEAD",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodOptions: "OPTIONS",
}

// String returns the wire token of the method, or "INVALID".
func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return methodNames[MethodInvalid]
}

// Valid reports whether m is one of the six recognized verbs.
func (m Method) Valid() bool {
	return m > MethodInvalid && int(m) < len(methodNames)
}

// ParseMethod maps a case-sensitive token to a Method.
// Unknown tokens yield MethodInvalid and false.
func ParseMethod(token string) (Method, bool) {
	switch token {
	case "GET":
		return MethodGet, true
	case "POST":
		return MethodPost, true
	case "HEAD":
		return MethodHead, true
	case "PUT":
		return MethodPut, true
	case "DELETE":
		return MethodDelete, true
	case "OPTIONS":
		return MethodOptions, true
	}
	return MethodInvalid, false
}
