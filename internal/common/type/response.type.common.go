package types

// Response is the internal envelope every service method returns. The
// response middleware serializes it through the "send" function placed on
// the gin context.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   error  `json:"-"`
}

// ResponseAPI is the wire shape of Response, used in swagger annotations.
type ResponseAPI struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
